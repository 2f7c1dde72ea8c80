/*
Package historyviewer lists the versions of an editable record, shows a single
past version and compares two versions field by field.

It is built from two pieces: the compare-selection state machine, which tracks
which versions an editor picked for comparison, and the diff transformation
engine, which turns a form built from one version into a read-only form whose
fields show the differences from another version as inline <ins>/<del> markup.

# Usage

Initialize the viewer with a directory of versioned documents (Loam), or inject
your own version source.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/historyviewer"
		"github.com/aretw0/historyviewer/pkg/domain"
	)

	func main() {
		viewer, err := historyviewer.New("./history")
		if err != nil {
			log.Fatal(err)
		}

		ref := domain.RecordRef{Class: "Page", ID: "12"}
		cmp, err := viewer.Compare(context.Background(), ref, 1, 2)
		if err != nil {
			log.Fatal(err)
		}
		for _, leaf := range domain.DataLeaves(cmp.Fields) {
			fmt.Println(leaf.Name, leaf.Value)
		}
	}

# Layout

Versions live under <class>/<id>/v<N>.md. The frontmatter carries the version
descriptor (author, publisher, published flag, last edited time) and a "fields"
map; the Markdown body becomes the Content field.

# Selections

Selections are kept per session in a SelectionStore (memory, file or Redis) and
changed only through Dispatch, which applies domain actions in order:

	viewer.Dispatch(ctx, "editor-1",
		domain.EnterCompare{Version: v3},
		domain.SelectVersion{Version: v5},
	)

Subscribers registered with Subscribe receive every resulting snapshot.
*/
package historyviewer
