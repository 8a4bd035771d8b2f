package entities

// MergeMode controls how an accepted submission lands in the registry
// repository: committed directly or proposed as a pull request.
type MergeMode string

// Supported merge modes for allow-listed repositories
const (
	ModeDirect MergeMode = "direct"
	ModePR     MergeMode = "pr"
)

// DefaultMergeMode is used when an allow-list entry omits or misstates
// its mode. PR mode is the safe default: a maintainer still reviews.
const DefaultMergeMode = ModePR

// Valid reports whether the mode is one of the supported values.
func (m MergeMode) Valid() bool {
	return m == ModeDirect || m == ModePR
}

// AllowedRepository is a single allow-list entry: a repository permitted
// to publish into the registry, plus its merge mode.
type AllowedRepository struct {
	Repo string // owner/name
	Mode MergeMode
}

// Allowlist is the set of repositories permitted to publish.
// Entries are unique per repository; the first entry wins on duplicates.
type Allowlist struct {
	entries map[string]AllowedRepository
	order   []string
}

// NewAllowlist builds an allow-list from a slice of entries.
// Duplicate repositories keep the first entry seen.
func NewAllowlist(repos []AllowedRepository) *Allowlist {
	a := &Allowlist{
		entries: make(map[string]AllowedRepository, len(repos)),
	}
	for _, r := range repos {
		if _, exists := a.entries[r.Repo]; exists {
			continue
		}
		if !r.Mode.Valid() {
			r.Mode = DefaultMergeMode
		}
		a.entries[r.Repo] = r
		a.order = append(a.order, r.Repo)
	}
	return a
}

// Lookup returns the entry for a repository and whether it is allow-listed.
func (a *Allowlist) Lookup(repo string) (AllowedRepository, bool) {
	entry, ok := a.entries[repo]
	return entry, ok
}

// Contains reports whether a repository is allow-listed.
func (a *Allowlist) Contains(repo string) bool {
	_, ok := a.entries[repo]
	return ok
}

// Repos returns the allow-listed repository names in file order.
func (a *Allowlist) Repos() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Len returns the number of allow-listed repositories.
func (a *Allowlist) Len() int {
	return len(a.entries)
}
