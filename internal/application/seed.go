package application

import "context"

// Seed pre-fills the primary party from the session. Each map is keyed by
// field path. Per field, the verified customer session wins over the
// external identity session, which wins over previously submitted form data.
type Seed struct {
	VerifiedSession  map[string]string `json:"verifiedSession,omitempty"`
	ExternalIdentity map[string]string `json:"externalIdentity,omitempty"`
	PriorForm        map[string]string `json:"priorForm,omitempty"`
}

// InitialStateProvider supplies the seed of a new application.
type InitialStateProvider interface {
	InitialState(ctx context.Context) (Seed, error)
}

// InitialState lets a literal Seed serve as its own provider.
func (s Seed) InitialState(context.Context) (Seed, error) { return s, nil }

// Resolve overlays the sources in precedence order. Blank values never
// override a lower-precedence value.
func (s Seed) Resolve() map[string]string {
	out := make(map[string]string)
	for _, layer := range []map[string]string{s.PriorForm, s.ExternalIdentity, s.VerifiedSession} {
		for path, value := range layer {
			if value != "" {
				out[path] = value
			}
		}
	}
	return out
}
