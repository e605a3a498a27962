package mailstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/mhoran/mailsweep/internal/core"
)

// MemoryProvider is an in-memory core.MailStore. It backs the tests and the
// memory mail-store configuration, and gives the batch traversal the same
// live-position semantics as a real store: removing an item shifts the
// positions of the items after it.
type MemoryProvider struct {
	stores []*MemoryStore
}

// NewMemoryProvider creates a provider over the given stores.
func NewMemoryProvider(stores ...*MemoryStore) *MemoryProvider {
	return &MemoryProvider{stores: stores}
}

func (p *MemoryProvider) Stores(ctx context.Context) ([]core.Store, error) {
	out := make([]core.Store, 0, len(p.stores))
	for _, s := range p.stores {
		out = append(out, s)
	}
	return out, nil
}

func (p *MemoryProvider) Close() error { return nil }

// MemoryStore is one named in-memory store.
type MemoryStore struct {
	name string
	root *MemoryFolder
}

// NewMemoryStore creates a store with an empty root folder.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name: name,
		root: &MemoryFolder{name: name},
	}
}

func (s *MemoryStore) DisplayName() string { return s.name }

func (s *MemoryStore) RootFolder(ctx context.Context) (core.Folder, error) {
	return s.root, nil
}

// Root returns the root folder for test setup.
func (s *MemoryStore) Root() *MemoryFolder { return s.root }

// MemoryFolder is a node in a MemoryStore's hierarchy.
type MemoryFolder struct {
	name     string
	parent   *MemoryFolder
	children []*MemoryFolder
	items    []*MemoryItem
}

func (f *MemoryFolder) Name() string { return f.name }

func (f *MemoryFolder) Path() string {
	if f.parent == nil {
		return f.name
	}
	return f.parent.Path() + core.PathSeparator + f.name
}

func (f *MemoryFolder) Children(ctx context.Context) ([]core.Folder, error) {
	out := make([]core.Folder, 0, len(f.children))
	for _, c := range f.children {
		out = append(out, c)
	}
	return out, nil
}

func (f *MemoryFolder) Child(ctx context.Context, name string) (core.Folder, error) {
	for _, c := range f.children {
		if c.name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%q under %q: %w", name, f.name, core.ErrFolderNotFound)
}

func (f *MemoryFolder) CreateChild(ctx context.Context, name string) (core.Folder, error) {
	child := &MemoryFolder{name: name, parent: f}
	f.children = append(f.children, child)
	return child, nil
}

func (f *MemoryFolder) Items(ctx context.Context) (core.ItemSource, error) {
	return &memoryItems{folder: f}, nil
}

// AddFolder creates (or finds) a nested folder for test setup. path is
// backslash-delimited.
func (f *MemoryFolder) AddFolder(path string) *MemoryFolder {
	current := f
	for _, segment := range strings.Split(path, core.PathSeparator) {
		var next *MemoryFolder
		for _, c := range current.children {
			if c.name == segment {
				next = c
				break
			}
		}
		if next == nil {
			next = &MemoryFolder{name: segment, parent: current}
			current.children = append(current.children, next)
		}
		current = next
	}
	return current
}

// AddItem appends an item to the folder.
func (f *MemoryFolder) AddItem(item *MemoryItem) *MemoryItem {
	item.folder = f
	f.items = append(f.items, item)
	return item
}

// ItemCount reports the current number of items, for test assertions.
func (f *MemoryFolder) ItemCount() int { return len(f.items) }

// ItemSubjects lists the current item subjects in position order.
func (f *MemoryFolder) ItemSubjects() []string {
	out := make([]string, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it.SubjectText)
	}
	return out
}

func (f *MemoryFolder) removeItem(item *MemoryItem) bool {
	for i, it := range f.items {
		if it == item {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// memoryItems is a live view over a folder's item slice.
type memoryItems struct {
	folder *MemoryFolder
}

func (s *memoryItems) Count(ctx context.Context) (int, error) {
	return len(s.folder.items), nil
}

func (s *memoryItems) ItemAt(ctx context.Context, pos int) (core.Item, error) {
	if pos < 1 || pos > len(s.folder.items) {
		return nil, fmt.Errorf("no item at position %d (count %d)", pos, len(s.folder.items))
	}
	return s.folder.items[pos-1], nil
}

// MemoryItem is a single in-memory item. The error fields let tests inject
// field-read and action failures.
type MemoryItem struct {
	folder *MemoryFolder

	Mail        bool
	Handle      core.SenderHandle
	SenderAddr  string
	SubjectText string
	BodyText    string

	FieldErr  error
	ActionErr error

	// SubjectReads counts Subject calls, letting tests verify how often
	// an item was visited.
	SubjectReads int
}

// NewMailItem creates a mail item with a plain (non-directory) sender.
func NewMailItem(sender, subject, body string) *MemoryItem {
	return &MemoryItem{
		Mail:        true,
		Handle:      core.SenderHandle{Handle: sender},
		SenderAddr:  sender,
		SubjectText: subject,
		BodyText:    body,
	}
}

func (i *MemoryItem) IsMail() bool { return i.Mail }

func (i *MemoryItem) Sender() (core.SenderHandle, error) {
	if i.FieldErr != nil {
		return core.SenderHandle{}, i.FieldErr
	}
	return i.Handle, nil
}

func (i *MemoryItem) SenderAddress() (string, error) {
	if i.FieldErr != nil {
		return "", i.FieldErr
	}
	return i.SenderAddr, nil
}

func (i *MemoryItem) Subject() (string, error) {
	i.SubjectReads++
	if i.FieldErr != nil {
		return "", i.FieldErr
	}
	return i.SubjectText, nil
}

func (i *MemoryItem) Body() (string, error) {
	if i.FieldErr != nil {
		return "", i.FieldErr
	}
	return i.BodyText, nil
}

func (i *MemoryItem) Delete(ctx context.Context) error {
	if i.ActionErr != nil {
		return i.ActionErr
	}
	if i.folder == nil || !i.folder.removeItem(i) {
		return fmt.Errorf("item %q already gone", i.SubjectText)
	}
	i.folder = nil
	return nil
}

func (i *MemoryItem) Move(ctx context.Context, dest core.Folder) error {
	if i.ActionErr != nil {
		return i.ActionErr
	}
	target, ok := dest.(*MemoryFolder)
	if !ok {
		return fmt.Errorf("cannot move across store implementations")
	}
	if i.folder == nil || !i.folder.removeItem(i) {
		return fmt.Errorf("item %q already gone", i.SubjectText)
	}
	target.AddItem(i)
	return nil
}
