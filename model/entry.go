package model

// Entry is a named command string. Command is usually a launch-option
// assignment such as "SteamDeck=0 %command%".
type Entry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Command string `json:"command"`
}
