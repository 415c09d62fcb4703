// Package workspace implements the concurrent Solution store shared
// across the phases of a MARS run. It is a read-many/write-one map keyed
// by Solution.ID.
package workspace

import (
	"sort"
	"sync"

	"github.com/optillm-go/optillm/core"
)

// Workspace is safe for concurrent use. Reads clone Solutions out before
// returning them; callers must not hold a Workspace lock across a
// backend suspension.
type Workspace struct {
	mu        sync.RWMutex
	solutions map[string]core.Solution
	order     []string // insertion order, for replace-preserving iteration
}

// New returns an empty Workspace.
func New() *Workspace {
	return &Workspace{solutions: make(map[string]core.Solution)}
}

// Add appends a new Solution. It always increments Len() by 1, even if
// the id collides with an existing entry (last write wins for the map,
// but order still grows — callers are expected to give each Solution a
// unique id).
func (w *Workspace) Add(s core.Solution) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.order = append(w.order, s.ID)
	w.solutions[s.ID] = s
}

// Get returns a clone of the Solution with the given id.
func (w *Workspace) Get(id string) (core.Solution, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.solutions[id]
	return s, ok
}

// Replace overwrites an existing Solution by id. It never changes Len().
// Returns a NoSolutions-kind error if the id is absent.
func (w *Workspace) Replace(s core.Solution) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.solutions[s.ID]; !ok {
		return core.New(core.KindNoSolutions, "workspace.Replace", "solution not found: "+s.ID)
	}
	w.solutions[s.ID] = s
	return nil
}

// All returns a snapshot of every Solution, in insertion order.
func (w *Workspace) All() []core.Solution {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]core.Solution, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.solutions[id])
	}
	return out
}

// Len reports the current number of Solutions.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Verified returns every Solution with IsVerified() true, in insertion
// order.
func (w *Workspace) Verified() []core.Solution {
	var out []core.Solution
	for _, s := range w.All() {
		if s.IsVerified() {
			out = append(out, s)
		}
	}
	return out
}

// ByAgent returns every Solution produced by the given agent id, in
// insertion order.
func (w *Workspace) ByAgent(agentID string) []core.Solution {
	var out []core.Solution
	for _, s := range w.All() {
		if s.AgentID == agentID {
			out = append(out, s)
		}
	}
	return out
}

// SortedByScore returns every Solution ordered by VerificationScore
// descending. Ties keep their relative insertion order (stable sort).
func (w *Workspace) SortedByScore() []core.Solution {
	out := w.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VerificationScore > out[j].VerificationScore
	})
	return out
}

// TopNVerified returns the top n verified Solutions by score.
func (w *Workspace) TopNVerified(n int) []core.Solution {
	var verified []core.Solution
	for _, s := range w.SortedByScore() {
		if s.IsVerified() {
			verified = append(verified, s)
		}
	}
	if n >= len(verified) {
		return verified
	}
	return verified[:n]
}

// BestUnverified returns, among Solutions with zero verification
// failures, the one whose answer is shortest — a deliberate heuristic
// favoring concise candidates. Returns false if there are none.
func (w *Workspace) BestUnverified() (core.Solution, bool) {
	var best core.Solution
	found := false
	for _, s := range w.All() {
		if s.VerificationFailures != 0 {
			continue
		}
		if !found || len(s.Answer) < len(best.Answer) {
			best = s
			found = true
		}
	}
	return best, found
}

// Clear empties the workspace.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.solutions = make(map[string]core.Solution)
	w.order = nil
}
