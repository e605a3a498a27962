package mailstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhoran/mailsweep/internal/adapters/mailstore"
	"github.com/mhoran/mailsweep/internal/core"
)

func TestMemoryFolderPathsAndLookup(t *testing.T) {
	store := mailstore.NewMemoryStore("Online Archive")
	leaf := store.Root().AddFolder(`Inbox\Promo\Weekly`)

	assert.Equal(t, `Online Archive\Inbox\Promo\Weekly`, leaf.Path())

	ctx := context.Background()
	inbox, err := store.Root().Child(ctx, "Inbox")
	require.NoError(t, err)
	promo, err := inbox.Child(ctx, "Promo")
	require.NoError(t, err)
	_, err = promo.Child(ctx, "Weekly")
	require.NoError(t, err)

	_, err = promo.Child(ctx, "Daily")
	assert.ErrorIs(t, err, core.ErrFolderNotFound)
}

func TestMemoryFolderCreateChild(t *testing.T) {
	store := mailstore.NewMemoryStore("Archive")
	ctx := context.Background()

	created, err := store.Root().CreateChild(ctx, "Receipts")
	require.NoError(t, err)
	assert.Equal(t, "Receipts", created.Name())

	found, err := store.Root().Child(ctx, "Receipts")
	require.NoError(t, err)
	assert.Same(t, created, found)
}

func TestMemoryItemPositionsShiftOnDelete(t *testing.T) {
	store := mailstore.NewMemoryStore("Archive")
	inbox := store.Root().AddFolder("Inbox")
	inbox.AddItem(mailstore.NewMailItem("a@x.com", "first", ""))
	second := inbox.AddItem(mailstore.NewMailItem("b@x.com", "second", ""))
	inbox.AddItem(mailstore.NewMailItem("c@x.com", "third", ""))

	ctx := context.Background()
	items, err := inbox.Items(ctx)
	require.NoError(t, err)

	count, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, second.Delete(ctx))

	// The view is live: the item that was third now sits at position 2.
	count, err = items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	at2, err := items.ItemAt(ctx, 2)
	require.NoError(t, err)
	subject, err := at2.Subject()
	require.NoError(t, err)
	assert.Equal(t, "third", subject)

	_, err = items.ItemAt(ctx, 3)
	assert.Error(t, err)
}

func TestMemoryItemMoveBetweenFolders(t *testing.T) {
	store := mailstore.NewMemoryStore("Archive")
	inbox := store.Root().AddFolder("Inbox")
	receipts := store.Root().AddFolder("Receipts")
	item := inbox.AddItem(mailstore.NewMailItem("shop@x.com", "Your receipt", ""))

	require.NoError(t, item.Move(context.Background(), receipts))

	assert.Equal(t, 0, inbox.ItemCount())
	assert.Equal(t, []string{"Your receipt"}, receipts.ItemSubjects())
}

func TestMemoryItemActionErrLeavesItemInPlace(t *testing.T) {
	store := mailstore.NewMemoryStore("Archive")
	inbox := store.Root().AddFolder("Inbox")
	item := inbox.AddItem(mailstore.NewMailItem("a@x.com", "stuck", ""))
	item.ActionErr = assert.AnError

	err := item.Delete(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, inbox.ItemCount())
}
