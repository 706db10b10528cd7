package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// layerTypeOptions maps the labels shown in the new-layer dialog onto the
// stored layer type tags.
var layerTypeOptions = []struct {
	Label string
	Type  string
}{
	{"Planes", LayerPlane},
	{"Fault planes", LayerFaultPlane},
	{"Lines", LayerLine},
	{"Small circles", LayerSmallCircle},
	{"Eigenvectors", LayerEigenvector},
}

// projectLayer is one layer in the JSON project envelope.
type projectLayer struct {
	Name     string                   `json:"name"`
	Type     string                   `json:"type"`
	Features []map[string]interface{} `json:"features"`
}

// projectFile is the JSON import/export envelope.
type projectFile struct {
	Layers []projectLayer `json:"layers"`
}

// createUI builds the whole window content: layer selector, toolbar and the
// data view of the active layer.
func createUI(win fyne.Window, db *sql.DB, settings *Settings, settingsPath string) fyne.CanvasObject {
	// plot host. The actual stereonet rendering lives in the plotting
	// package; the data views only get the redraw trigger.
	plotStatus := widget.NewLabel("Plot: no data")
	redrawCount := 0
	redraw := func() {
		redrawCount++
		plotStatus.SetText(fmt.Sprintf("Plot: redraw #%d", redrawCount))
	}

	// append-feature callback handed to every data view
	addFeature := func(layerType string, layerID int) {
		if _, err := appendBlankFeature(db, layerType, layerID); err != nil {
			log.Println("warning: failed to append feature:", err)
		}
	}

	var layers []Layer
	loadLayers := func() {
		l, err := getAllLayers(db)
		if err != nil {
			log.Println("warning: failed to load layers:", err)
			layers = nil
			return
		}
		layers = l
	}
	loadLayers()

	viewHost := container.NewStack()
	var current *dataView

	showLayer := func(layer Layer) {
		current = newDataViewForLayer(win, db, layer, redraw, addFeature, settings)
		viewHost.Objects = []fyne.CanvasObject{current.container()}
		viewHost.Refresh()
		redraw()
	}

	layerNames := func() []string {
		var names []string
		for _, l := range layers {
			names = append(names, l.Name)
		}
		return names
	}

	layerSelect := widget.NewSelect(layerNames(), nil)
	layerSelect.OnChanged = func(sel string) {
		for _, l := range layers {
			if l.Name == sel {
				showLayer(l)
				return
			}
		}
	}

	// refresh the selector and keep a sensible selection after changes
	refreshLayers := func(selectName string) {
		loadLayers()
		layerSelect.Options = layerNames()
		if selectName == "" && len(layers) > 0 {
			selectName = layers[0].Name
		}
		layerSelect.Refresh()
		if selectName != "" {
			layerSelect.SetSelected(selectName)
		} else {
			current = nil
			viewHost.Objects = nil
			viewHost.Refresh()
		}
	}

	addLayerBtn := widget.NewButton("New Layer", func() {
		nameEntry := widget.NewEntry()
		nameEntry.SetText(fmt.Sprintf("Layer %d", len(layers)+1))

		var typeLabels []string
		for _, o := range layerTypeOptions {
			typeLabels = append(typeLabels, o.Label)
		}
		typeSelect := widget.NewSelect(typeLabels, nil)
		typeSelect.SetSelected(typeLabels[0])

		form := container.NewVBox(
			widget.NewLabel("Layer name:"),
			nameEntry,
			widget.NewLabel("Layer type:"),
			typeSelect,
		)
		dialog.ShowCustomConfirm("New Layer", "Create", "Cancel", form, func(yes bool) {
			if !yes {
				return
			}
			layerType := LayerPlane
			for _, o := range layerTypeOptions {
				if o.Label == typeSelect.Selected {
					layerType = o.Type
				}
			}
			id, err := insertLayer(db, nameEntry.Text, layerType)
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			// start every layer with one blank row so typing can begin
			if _, err := appendBlankFeature(db, layerType, int(id)); err != nil {
				dialog.ShowError(err, win)
				return
			}
			refreshLayers(nameEntry.Text)
		}, win)
	})

	delLayerBtn := widget.NewButton("Delete Layer", func() {
		if current == nil {
			return
		}
		dialog.ShowConfirm("Delete layer", "Delete this layer and all its data?", func(yes bool) {
			if !yes {
				return
			}
			if err := deleteLayer(db, current.layer.ID); err != nil {
				dialog.ShowError(err, win)
				return
			}
			refreshLayers("")
			redraw()
		}, win)
	})

	addRowBtn := widget.NewButton("Add Row", func() {
		if current == nil {
			return
		}
		addFeature(current.layer.Type, current.layer.ID)
		current.reload()
	})

	delRowsBtn := widget.NewButton("Delete Rows", func() {
		if current == nil {
			return
		}
		current.deleteSelected()
	})

	eigenBtn := widget.NewButton("Eigenvectors", func() {
		if current == nil {
			return
		}
		switch current.layer.Type {
		case LayerPlane, LayerFaultPlane, LayerLine:
		default:
			dialog.ShowInformation("Eigenvectors",
				"Fabric analysis needs a plane, fault plane or line layer", win)
			return
		}
		dstName := current.layer.Name + " eigenvectors"
		dstID, err := insertLayer(db, dstName, LayerEigenvector)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		n, err := appendEigenvectors(db, current.layer.ID, int(dstID))
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if n == 0 {
			_ = deleteLayer(db, int(dstID))
			dialog.ShowInformation("Eigenvectors", "No orientation data in this layer", win)
			return
		}
		refreshLayers(dstName)
		redraw()
	})

	highlightCheck := widget.NewCheck("Highlight", func(on bool) {
		settings.Highlight = on
		if err := settings.save(settingsPath); err != nil {
			log.Println("warning: failed to save settings:", err)
		}
	})
	highlightCheck.SetChecked(settings.Highlight)

	openBtn := widget.NewButton("Open", func() {
		fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			if r == nil {
				return
			}
			defer r.Close()
			data, err := io.ReadAll(r)
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			var pf projectFile
			if err := json.Unmarshal(data, &pf); err != nil {
				dialog.ShowError(err, win)
				return
			}
			if err := importProject(db, pf); err != nil {
				dialog.ShowError(err, win)
				return
			}
			refreshLayers("")
			redraw()
		}, win)
		fd.SetFilter(storageFilterJSON())
		fd.Show()
	})

	saveBtn := widget.NewButton("Save", func() {
		fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			if uc == nil {
				return
			}
			defer uc.Close()
			pf, err := exportProject(db)
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			data, err := json.MarshalIndent(pf, "", "  ")
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			if _, err := uc.Write(data); err != nil {
				dialog.ShowError(err, win)
				return
			}
		}, win)
		fd.SetFileName("project.json")
		fd.Show()
	})

	toolbar := container.NewHBox(
		openBtn, saveBtn, widget.NewSeparator(),
		layerSelect, addLayerBtn, delLayerBtn, widget.NewSeparator(),
		addRowBtn, delRowsBtn, widget.NewSeparator(),
		eigenBtn, widget.NewSeparator(), highlightCheck,
	)

	refreshLayers("")

	return container.NewBorder(toolbar, plotStatus, nil, nil, viewHost)
}

// storageFilterJSON returns a file dialog filter for .json
func storageFilterJSON() storage.FileFilter {
	return storage.NewExtensionFileFilter([]string{".json"})
}

// exportProject collects all layers and their features into the JSON
// project envelope.
func exportProject(db *sql.DB) (projectFile, error) {
	var pf projectFile
	layers, err := getAllLayers(db)
	if err != nil {
		return pf, err
	}
	for _, l := range layers {
		features, err := getFeatures(db, l.ID)
		if err != nil {
			return pf, err
		}
		pl := projectLayer{Name: l.Name, Type: l.Type}
		for _, f := range features {
			pl.Features = append(pl.Features, mergeWithSchema(l.Type, f.Data))
		}
		pf.Layers = append(pf.Layers, pl)
	}
	return pf, nil
}

// importProject replaces the current database content with the envelope's
// layers and features.
func importProject(db *sql.DB, pf projectFile) error {
	if err := deleteAllLayers(db); err != nil {
		return err
	}
	for _, pl := range pf.Layers {
		if layerColumns(pl.Type) == nil {
			return fmt.Errorf("unknown layer type %q", pl.Type)
		}
		id, err := insertLayer(db, pl.Name, pl.Type)
		if err != nil {
			return err
		}
		for _, f := range pl.Features {
			if _, err := insertFeature(db, int(id), mergeWithSchema(pl.Type, f)); err != nil {
				return err
			}
		}
	}
	return nil
}
