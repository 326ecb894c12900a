// Package contacts is the demo domain: an in-memory address book exposed as
// remote procedures and browsed through isomorphic handlers.
package contacts

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown contact ids.
var ErrNotFound = errors.New("contacts: not found")

// Contact is an address book entry.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Repo is an in-memory contact store.
type Repo struct {
	byID map[string]Contact
	mu   sync.RWMutex
}

// NewRepo creates a repo seeded with contacts.
func NewRepo(seed ...Contact) *Repo {
	r := &Repo{byID: make(map[string]Contact, len(seed))}
	for _, c := range seed {
		_, _ = r.Create(context.Background(), c.Name, c.Email)
	}
	return r
}

// List returns contacts sorted by name.
func (r *Repo) List(_ context.Context) []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Contact, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Contact) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Get returns one contact.
func (r *Repo) Get(_ context.Context, id string) (Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

// Create stores a new contact.
func (r *Repo) Create(_ context.Context, name, email string) (Contact, error) {
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if name == "" || !strings.Contains(email, "@") {
		return Contact{}, errors.New("contacts: name and a valid email are required")
	}
	c := Contact{ID: uuid.NewString(), Name: name, Email: email}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	return c, nil
}

// Delete removes a contact.
func (r *Repo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
