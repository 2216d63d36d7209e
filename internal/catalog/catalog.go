package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/storeduty/internal/models"
)

// PlaceholderStoreID is the picker entry shown before a store is chosen.
const PlaceholderStoreID = "-"

// Catalog bundles the store and task catalogs. It is loaded once at startup
// and never mutated afterwards.
type Catalog struct {
	Stores models.StoreCatalog
	Tasks  models.TaskCatalog
}

type file struct {
	Stores []models.Store `json:"stores"`
	Tasks  []models.Task  `json:"tasks"`
}

// Default returns the built-in catalog of stores and daily tasks.
func Default() Catalog {
	return Catalog{
		Stores: models.NewStoreCatalog([]models.Store{
			{ID: PlaceholderStoreID, Name: "請選擇門市", Placeholder: true},
			{ID: "tainan-main", Name: "台南總店"},
			{ID: "yongkang", Name: "永康店"},
			{ID: "ximen", Name: "西門店"},
			{ID: "anping", Name: "安平店"},
		}),
		Tasks: models.NewTaskCatalog([]models.Task{
			{
				ID:            "open-grooming",
				Name:          "開店-儀容自檢",
				SOP:           "Uniform, name badge and hair checked before doors open. Take a live photo.",
				RequiresPhoto: true,
				Personal:      true,
			},
			{
				ID:   "open-cleaning",
				Name: "開店-環境清掃",
				SOP:  "Counters, display phones and entrance floor cleaned before opening.",
			},
			{
				ID:   "floor-petty-cash",
				Name: "營業-零用金確認",
				SOP:  "Count the petty cash float and reconcile it against the float sheet.",
			},
			{
				ID:   "floor-spot-count",
				Name: "營業-隨機抽盤",
				SOP:  "Pick five SKUs at random and match shelf count against the POS count.",
			},
			{
				ID:   "close-inventory-upload",
				Name: "閉店-庫存表上傳",
				SOP:  "Upload the closing inventory sheet to the shared drive before leaving.",
			},
		}),
	}
}

// Load reads a JSON catalog file. An empty path returns Default.
func Load(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := validate(f); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	return Catalog{
		Stores: models.NewStoreCatalog(f.Stores),
		Tasks:  models.NewTaskCatalog(f.Tasks),
	}, nil
}

func validate(f file) error {
	seen := make(map[string]bool)
	realStores := 0
	for _, s := range f.Stores {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("store with empty id")
		}
		if seen["store:"+s.ID] {
			return fmt.Errorf("duplicate store id %q", s.ID)
		}
		seen["store:"+s.ID] = true
		if !s.Placeholder {
			realStores++
		}
	}
	if realStores == 0 {
		return fmt.Errorf("at least one non-placeholder store is required")
	}

	if len(f.Tasks) == 0 {
		return fmt.Errorf("at least one task is required")
	}
	for _, t := range f.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("task with empty id")
		}
		if seen["task:"+t.ID] {
			return fmt.Errorf("duplicate task id %q", t.ID)
		}
		seen["task:"+t.ID] = true
	}
	return nil
}
