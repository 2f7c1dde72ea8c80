package historyviewer_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/historyviewer"
	"github.com/aretw0/historyviewer/pkg/adapters/memory"
	"github.com/aretw0/historyviewer/pkg/domain"
)

// ExampleViewer_Compare demonstrates how to diff two versions held in memory.
// This is useful for testing, embedded scenarios, or when versions come from
// your own persistence layer.
func ExampleViewer_Compare() {
	ref := domain.RecordRef{Class: "Page", ID: "1"}

	// 1. Describe the history of the record.
	src, err := memory.NewFromVersions(ref,
		&domain.Version{Version: 1, Fields: map[string]any{"Title": "One"}},
		&domain.Version{Version: 2, Fields: map[string]any{"Title": "1st"}},
	)
	if err != nil {
		log.Fatal(err)
	}

	// 2. No directory is needed because we are providing a version source.
	viewer, err := historyviewer.New("", historyviewer.WithVersionSource(src))
	if err != nil {
		log.Fatal(err)
	}

	// 3. Diff version 2 against version 1.
	cmp, err := viewer.Compare(context.Background(), ref, 1, 2)
	if err != nil {
		log.Fatal(err)
	}
	for _, leaf := range domain.DataLeaves(cmp.Fields) {
		fmt.Printf("%s: %s\n", leaf.Name, leaf.Value)
	}
	// Output:
	// Title: <ins>1st</ins> <del>One</del>
}

// ExampleViewer_Dispatch walks the compare-selection state machine.
func ExampleViewer_Dispatch() {
	viewer, err := historyviewer.New("")
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	steps := []domain.Action{
		domain.EnterCompare{Version: &domain.Version{Version: 3}},
		domain.SelectVersion{Version: &domain.Version{Version: 5}},
		domain.ClearSlot{Slot: domain.SlotFrom},
		domain.ExitCompare{},
	}
	for _, a := range steps {
		sel, err := viewer.Dispatch(ctx, "editor", a)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s -> %s\n", a.Type(), sel.Phase())
	}
	// Output:
	// enter_compare -> selecting_to
	// select_version -> comparing
	// clear_slot -> selecting_to
	// exit_compare -> idle
}

// ExampleViewer_Transform diffs a caller-built form against a record.
func ExampleViewer_Transform() {
	viewer, err := historyviewer.New("")
	if err != nil {
		log.Fatal(err)
	}

	fields := []domain.Field{
		&domain.Composite{Name: "Root", Children: []domain.Field{
			&domain.Leaf{Name: "Title", Kind: domain.KindText, Value: "Hello there"},
			&domain.Leaf{Name: "Intro", Kind: domain.KindHeader, Value: "Details"},
		}},
	}
	out, err := viewer.Transform(context.Background(), fields, map[string]string{"Title": "Hello"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(domain.DataLeaves(out)[0].Value)
	// Output:
	// Hello <ins>there</ins>
}
