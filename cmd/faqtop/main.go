package main

import (
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"faqmill/internal/tui"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "http://localhost:9100", "Base URL of the faqmill service")
	flag.Parse()

	client := tui.NewClient(*addr, 10*time.Second)
	m := tui.New(client)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
