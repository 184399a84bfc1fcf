package reputation

import "context"

// Store is the durable holder of the report log and reputation mapping.
// Load returns the full persisted state; Save replaces it wholesale.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}
