package model

// CategoryInbox is the system default category. It cannot be renamed or
// deleted and is the fallback target for orphaned bookmarks.
const CategoryInbox = "Inbox"

// SecretSlot is the canonical name of the secret category as seeded on
// first run. The user-visible name lives in StorageRecord.SecretCategoryName
// and follows renames; SecretSlot only identifies the historical slot when
// the menu label needs overriding. See DESIGN.md for the known ambiguity
// when a user creates an unrelated category literally named "Secret".
const SecretSlot = "Secret"

// DefaultPassword is the secret-category password seeded on first run.
const DefaultPassword = "1234"

// StorageRecord is the single persisted document holding all durable state.
type StorageRecord struct {
	Categories         []string         `json:"categories"`
	Bookmarks          []Bookmark       `json:"bookmarks"`
	SecretPassword     string           `json:"secretPassword"`
	SecretCategoryName string           `json:"secretCategoryName"`
	LastSavedCategory  string           `json:"lastSavedCategory,omitempty"`
	CategoryUsage      map[string]int64 `json:"categoryUsage"`
}

// DefaultCategories is the category set seeded on first run.
func DefaultCategories() []string {
	return []string{CategoryInbox, "Work", "Design", "Dev", SecretSlot}
}

// NewStorageRecord creates the first-run record with defaults.
func NewStorageRecord() *StorageRecord {
	return &StorageRecord{
		Categories:         DefaultCategories(),
		Bookmarks:          []Bookmark{},
		SecretPassword:     DefaultPassword,
		SecretCategoryName: SecretSlot,
		CategoryUsage:      map[string]int64{},
	}
}

// Normalize repairs nil slices and maps after decoding and backfills the
// secret defaults, so a record read from any backend is always structurally
// complete.
func (r *StorageRecord) Normalize() {
	if r.Categories == nil {
		r.Categories = DefaultCategories()
	}
	if r.Bookmarks == nil {
		r.Bookmarks = []Bookmark{}
	}
	if r.CategoryUsage == nil {
		r.CategoryUsage = map[string]int64{}
	}
	if r.SecretPassword == "" {
		r.SecretPassword = DefaultPassword
	}
	if r.SecretCategoryName == "" {
		r.SecretCategoryName = SecretSlot
	}
}

// HasCategory reports whether name is a member of the category sequence.
func (r *StorageRecord) HasCategory(name string) bool {
	for _, c := range r.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// HasBookmark reports whether a bookmark with the same (url, category)
// pair already exists. Duplicate saves are rejected on this key.
func (r *StorageRecord) HasBookmark(url, category string) bool {
	for _, b := range r.Bookmarks {
		if b.URL == url && b.Category == category {
			return true
		}
	}
	return false
}

// BookmarkByID finds a bookmark by id, returns nil if not found.
func (r *StorageRecord) BookmarkByID(id string) *Bookmark {
	for i := range r.Bookmarks {
		if r.Bookmarks[i].ID == id {
			return &r.Bookmarks[i]
		}
	}
	return nil
}

// BookmarksInCategory returns the bookmarks tagged with the given category.
func (r *StorageRecord) BookmarksInCategory(category string) []Bookmark {
	var result []Bookmark
	for _, b := range r.Bookmarks {
		if b.Category == category {
			result = append(result, b)
		}
	}
	return result
}

// SecretName returns the user-visible name of the secret category.
func (r *StorageRecord) SecretName() string {
	if r.SecretCategoryName != "" {
		return r.SecretCategoryName
	}
	return SecretSlot
}

// ValidCategory returns name if it exists, otherwise Inbox. Dangling
// references are coerced rather than rejected so the record stays
// internally consistent.
func (r *StorageRecord) ValidCategory(name string) string {
	if name != "" && r.HasCategory(name) {
		return name
	}
	return CategoryInbox
}

// Clone returns a deep copy. Mirrors hand copies to mutating operations so
// a half-applied mutation never leaks into a racing reader.
func (r *StorageRecord) Clone() *StorageRecord {
	out := &StorageRecord{
		Categories:         append([]string{}, r.Categories...),
		Bookmarks:          append([]Bookmark{}, r.Bookmarks...),
		SecretPassword:     r.SecretPassword,
		SecretCategoryName: r.SecretCategoryName,
		LastSavedCategory:  r.LastSavedCategory,
		CategoryUsage:      make(map[string]int64, len(r.CategoryUsage)),
	}
	for k, v := range r.CategoryUsage {
		out.CategoryUsage[k] = v
	}
	return out
}
