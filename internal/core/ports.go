package core

import (
	"context"
)

// MailStore is the external mail provider. Implementations own the
// connection/session and must be closed by the caller that opened them.
type MailStore interface {
	// Stores lists the top-level stores available through this provider.
	Stores(ctx context.Context) ([]Store, error)

	Close() error
}

// Store is one named store (an account or archive) within a MailStore.
type Store interface {
	DisplayName() string
	RootFolder(ctx context.Context) (Folder, error)
}

// Folder is a node in a store's folder hierarchy.
type Folder interface {
	Name() string
	Path() string

	Children(ctx context.Context) ([]Folder, error)

	// Child looks up a direct child by exact name. A missing child is
	// reported with an error wrapping ErrFolderNotFound.
	Child(ctx context.Context, name string) (Folder, error)

	CreateChild(ctx context.Context, name string) (Folder, error)

	// Items returns a live view over the folder's item collection.
	Items(ctx context.Context) (ItemSource, error)
}

// ItemSource is a live, position-indexed view of a folder's items.
// Positions are 1-based and shift when items are removed or relocated, so
// callers that mutate while iterating must walk positions in descending
// order.
type ItemSource interface {
	Count(ctx context.Context) (int, error)
	ItemAt(ctx context.Context, pos int) (Item, error)
}

// Item is a single item in a folder. Field accessors may fail at any time
// because the underlying item lives in an externally mutable store.
type Item interface {
	// IsMail reports whether the item is a mail message. Non-mail items
	// (calendar entries, receipts) are never classified.
	IsMail() bool

	Sender() (SenderHandle, error)
	SenderAddress() (string, error)
	Subject() (string, error)
	Body() (string, error)

	Delete(ctx context.Context) error
	Move(ctx context.Context, dest Folder) error
}

// DirectoryService resolves an internal directory handle to the primary
// plain address it maps to.
type DirectoryService interface {
	ResolvePrimaryAddress(ctx context.Context, handle string) (string, error)
}

// RuleSource provides rule rows in a fixed order. Later rows win on
// duplicate rule keys.
type RuleSource interface {
	Rows(ctx context.Context) ([]RuleRow, error)
}

// CacheStore persists the address-resolution cache between runs.
type CacheStore interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, entries map[string]string) error
}

// AuditLog receives the line-oriented activity and error records of a run.
// Action records go to the bulk sink, error records to the invalid sink.
type AuditLog interface {
	Starting(folderPath string)
	Deleted(trigger string, matchType MatchType, subject string)
	Moved(destination, trigger string, matchType MatchType, subject string)

	ActionError(destination string, err error)
	ItemProcessError(err error)
	FolderProcessingError(folderName string, err error)
	DataLoaderError(err error)
	GlobalRunError(err error)
}
