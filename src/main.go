package main

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const settingsPath = "./settings.json"

func main() {
	settings, err := loadSettings(settingsPath)
	if err != nil {
		log.Fatal("failed to load settings:", err)
	}

	a := app.New()

	db := initializeDB(settings.ProjectPath)
	defer db.Close()

	win := a.NewWindow("Stereogrid")
	win.SetContent(createUI(win, db, settings, settingsPath))
	win.Resize(fyne.NewSize(float32(settings.WindowWidth), float32(settings.WindowHeight)))
	win.ShowAndRun()
}
