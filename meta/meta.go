// meta/meta.go
package meta

import "time"

// MAX_AI_ACTIONS defines how many ranked candidates the AI executes per turn.
const MAX_AI_ACTIONS = 3

// THINKING_DELAY defines the pause before the AI starts acting.
const THINKING_DELAY = 1000 * time.Millisecond

// ACTION_DELAY defines the pause between two AI actions.
const ACTION_DELAY = 500 * time.Millisecond

// ADVISOR_TIMEOUT bounds a single strategy hint request.
const ADVISOR_TIMEOUT = 10 * time.Second

// MAX_TURNS caps headless games that would otherwise never end.
const MAX_TURNS = 300

// FALLBACK_HINT is used whenever the strategy advisor cannot answer.
const FALLBACK_HINT = "Expand into weakly held neighboring territories and keep strong garrisons on the border with the player."
