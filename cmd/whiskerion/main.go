// Command whiskerion is a themed chat client for the Gemini API.
package main

import "github.com/diogo/whiskerion/internal/commands"

func main() {
	commands.Execute()
}
