package submissions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/cli"
	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/validation"
)

// SubmitCmd reports one completed task. Missing fields are asked for in an
// interactive form unless --no-input is set.
type SubmitCmd struct {
	Store    string `help:"Store id." short:"s"`
	Employee string `help:"Employee name or number." short:"e"`
	Task     string `help:"Task id." short:"t"`
	Photo    string `help:"Photo evidence for photo-verified tasks." type:"existingfile"`
	Confirm  bool   `help:"Confirm the task was done (tasks without a photo)." short:"y"`
	NoInput  bool   `help:"Never prompt; fail on missing fields."`
}

func (c *SubmitCmd) Run(ctx *cli.Context) error {
	if !c.NoInput && c.needsInput(ctx.Catalog) {
		if err := c.prompt(ctx.Catalog); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Submission cancelled.")
				return nil
			}
			return err
		}
	}

	req := validation.Request{
		StoreID:      c.Store,
		EmployeeName: c.Employee,
		TaskID:       c.Task,
		Confirmed:    c.Confirm,
	}
	if c.Photo != "" {
		data, err := os.ReadFile(c.Photo)
		if err != nil {
			return fmt.Errorf("failed to read photo: %w", err)
		}
		req.Photo = data
		req.PhotoName = filepath.Base(c.Photo)
	}

	sub, result, err := ctx.Service().Submit(context.Background(), req)
	if err != nil {
		var verr *apperrors.ValidationError
		if apperrors.As(err, &verr) {
			return fmt.Errorf("submission rejected: %s", verr.Reason)
		}
		return err
	}

	if result.HasWarnings() {
		fmt.Print(result.FormatReport())
	}
	fmt.Printf("✓ Submitted at %s (id %s)\n", ctx.FormatTimestamp(sub.Timestamp), sub.ID)
	return nil
}

func (c *SubmitCmd) needsInput(cat catalog.Catalog) bool {
	if c.Store == "" || c.Employee == "" || c.Task == "" {
		return true
	}
	task, ok := cat.Tasks.Get(c.Task)
	if !ok {
		return false
	}
	if task.RequiresPhoto {
		return c.Photo == ""
	}
	return !c.Confirm
}

func (c *SubmitCmd) prompt(cat catalog.Catalog) error {
	var storeOpts []huh.Option[string]
	for _, s := range cat.Stores.Stores() {
		storeOpts = append(storeOpts, huh.NewOption(s.Name, s.ID))
	}
	var taskOpts []huh.Option[string]
	for _, t := range cat.Tasks.Tasks() {
		label := t.Name
		if t.RequiresPhoto {
			label += " 📷"
		}
		taskOpts = append(taskOpts, huh.NewOption(label, t.ID))
	}

	if c.Store == "" {
		c.Store = catalog.PlaceholderStoreID
	}
	requiresPhoto := func() bool {
		t, ok := cat.Tasks.Get(c.Task)
		return ok && t.RequiresPhoto
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Store").
				Options(storeOpts...).
				Value(&c.Store).
				Validate(func(id string) error {
					if !cat.Stores.IsValid(id) {
						return errors.New("choose a store")
					}
					return nil
				}),
			huh.NewInput().
				Title("Employee").
				Value(&c.Employee).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("employee is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Task").
				Options(taskOpts...).
				Value(&c.Task),
		),
		huh.NewGroup(
			huh.NewNote().
				TitleFunc(func() string { return sopFor(cat, c.Task) }, &c.Task),
			huh.NewInput().
				Title("Photo path").
				Value(&c.Photo).
				Validate(func(s string) error {
					if _, err := os.Stat(s); err != nil {
						return errors.New("photo not found")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return !requiresPhoto() }),
		huh.NewGroup(
			huh.NewNote().
				TitleFunc(func() string { return sopFor(cat, c.Task) }, &c.Task),
			huh.NewConfirm().
				Title("Task completed?").
				Value(&c.Confirm),
		).WithHideFunc(requiresPhoto),
	)
	return form.Run()
}

func sopFor(cat catalog.Catalog, taskID string) string {
	t, ok := cat.Tasks.Get(taskID)
	if !ok {
		return ""
	}
	if t.SOP == "" {
		return t.Name
	}
	return t.Name + ": " + t.SOP
}
