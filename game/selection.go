package game

import "fmt"

// SelectionResult is the outcome of a single click on the board.
type SelectionResult struct {
	Selection int     // Territory ID now selected, or NoSelection
	Action    *Action // Action to resolve, if the click completed one
	Message   string  // Status line for the presentation layer
	Err       error   // Set when the click was rejected
}

// Select handles the human side clicking territory clickedID while selection
// is the currently selected territory. It never mutates the board; callers
// resolve the returned action.
func Select(selection int, clickedID int, b *Board) SelectionResult {
	clicked := b.Territory(clickedID)
	if clicked == nil {
		return SelectionResult{
			Selection: selection,
			Message:   fmt.Sprintf("No territory with id %d", clickedID),
			Err:       fmt.Errorf("territory %d: %w", clickedID, ErrUnknownTerritory),
		}
	}

	selected := b.Territory(selection)
	if selected == nil {
		if clicked.Owner != Player {
			return SelectionResult{
				Selection: NoSelection,
				Message:   fmt.Sprintf("%s is not yours, select one of your territories first", clicked.Name),
			}
		}
		return SelectionResult{
			Selection: clicked.ID,
			Message:   fmt.Sprintf("Selected %s (%d units)", clicked.Name, clicked.Units),
		}
	}

	if selected.ID == clicked.ID {
		return SelectionResult{
			Selection: NoSelection,
			Message:   fmt.Sprintf("Deselected %s", clicked.Name),
		}
	}

	if !b.Adjacent(selected, clicked) {
		return SelectionResult{
			Selection: selection,
			Message:   fmt.Sprintf("%s is not adjacent to %s", clicked.Name, selected.Name),
			Err:       fmt.Errorf("%s to %s: %w", selected.Name, clicked.Name, ErrNotAdjacent),
		}
	}

	action := &Action{Type: AttackAction, From: selected.ID, To: clicked.ID}
	message := fmt.Sprintf("Attacking %s from %s", clicked.Name, selected.Name)
	if clicked.Owner == Player {
		action.Type = TransferAction
		message = fmt.Sprintf("Transferring units from %s to %s", selected.Name, clicked.Name)
	}
	return SelectionResult{
		Selection: NoSelection,
		Action:    action,
		Message:   message,
	}
}
