package main

import "github.com/hisgarden/mcp-server-meal-prep/cmd/mealprep/root"

func main() {
	root.Execute()
}
