package mailstore

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/core"
)

// IMAPOptions configures the IMAP mail-store binding.
type IMAPOptions struct {
	Address  string
	Username string
	Password string
	TLS      bool

	// StoreName is the display name this account is reported under.
	StoreName string
	// RootMailbox is the mailbox acting as the store's root folder. Empty
	// means the top of the mailbox hierarchy.
	RootMailbox string
}

// IMAPProvider is a core.MailStore bound to one IMAP account. Sequence
// numbers give folder items exactly the live-position semantics the batch
// traversal is built for: EXPUNGE and MOVE renumber later messages.
type IMAPProvider struct {
	client *imapclient.Client
	opts   IMAPOptions
	logger *zap.Logger
	delim  string

	// selected tracks the currently selected mailbox to avoid redundant
	// SELECT round trips.
	selected string
}

// DialIMAP connects and authenticates, and discovers the server's hierarchy
// delimiter.
func DialIMAP(opts IMAPOptions, logger *zap.Logger) (*IMAPProvider, error) {
	var client *imapclient.Client
	var err error
	if opts.TLS {
		host := opts.Address
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		client, err = imapclient.DialTLS(opts.Address, &imapclient.Options{
			TLSConfig: &tls.Config{ServerName: host},
		})
	} else {
		client, err = imapclient.DialInsecure(opts.Address, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("imap connect %s: %w", opts.Address, err)
	}

	if err := client.Login(opts.Username, opts.Password).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("imap login %s: %w", opts.Username, err)
	}

	p := &IMAPProvider{client: client, opts: opts, logger: logger, delim: "/"}

	mailboxes, err := client.List("", "%", nil).Collect()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("imap list: %w", err)
	}
	for _, mbox := range mailboxes {
		if mbox.Delim != 0 {
			p.delim = string(mbox.Delim)
			break
		}
	}

	logger.Info("imap connected",
		zap.String("address", opts.Address),
		zap.String("delimiter", p.delim))
	return p, nil
}

func (p *IMAPProvider) Stores(ctx context.Context) ([]core.Store, error) {
	return []core.Store{&imapStore{p: p}}, nil
}

func (p *IMAPProvider) Close() error {
	if err := p.client.Logout().Wait(); err != nil {
		p.logger.Debug("imap logout failed", zap.Error(err))
	}
	return p.client.Close()
}

func (p *IMAPProvider) ensureSelected(mailbox string) (int, error) {
	data, err := p.client.Select(mailbox, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("imap select %s: %w", mailbox, err)
	}
	p.selected = mailbox
	return int(data.NumMessages), nil
}

type imapStore struct {
	p *IMAPProvider
}

func (s *imapStore) DisplayName() string { return s.p.opts.StoreName }

func (s *imapStore) RootFolder(ctx context.Context) (core.Folder, error) {
	return &imapFolder{p: s.p, mailbox: s.p.opts.RootMailbox}, nil
}

// imapFolder wraps one mailbox. The empty mailbox stands for the hierarchy
// root, which can hold folders but no items.
type imapFolder struct {
	p       *IMAPProvider
	mailbox string
}

func (f *imapFolder) Name() string {
	if f.mailbox == "" {
		return f.p.opts.StoreName
	}
	segments := strings.Split(f.mailbox, f.p.delim)
	return segments[len(segments)-1]
}

func (f *imapFolder) Path() string {
	if f.mailbox == "" {
		return f.p.opts.StoreName
	}
	return strings.ReplaceAll(f.mailbox, f.p.delim, core.PathSeparator)
}

func (f *imapFolder) childMailbox(name string) string {
	if f.mailbox == "" {
		return name
	}
	return f.mailbox + f.p.delim + name
}

func (f *imapFolder) Children(ctx context.Context) ([]core.Folder, error) {
	pattern := "%"
	if f.mailbox != "" {
		pattern = f.mailbox + f.p.delim + "%"
	}
	mailboxes, err := f.p.client.List("", pattern, nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap list %q: %w", pattern, err)
	}
	out := make([]core.Folder, 0, len(mailboxes))
	for _, mbox := range mailboxes {
		out = append(out, &imapFolder{p: f.p, mailbox: mbox.Mailbox})
	}
	return out, nil
}

func (f *imapFolder) Child(ctx context.Context, name string) (core.Folder, error) {
	target := f.childMailbox(name)
	mailboxes, err := f.p.client.List("", target, nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap list %q: %w", target, err)
	}
	if len(mailboxes) == 0 {
		return nil, fmt.Errorf("mailbox %q: %w", target, core.ErrFolderNotFound)
	}
	return &imapFolder{p: f.p, mailbox: mailboxes[0].Mailbox}, nil
}

func (f *imapFolder) CreateChild(ctx context.Context, name string) (core.Folder, error) {
	target := f.childMailbox(name)
	if err := f.p.client.Create(target, nil).Wait(); err != nil {
		var respErr *imap.Error
		if !errors.As(err, &respErr) || respErr.Code != imap.ResponseCodeAlreadyExists {
			return nil, fmt.Errorf("imap create %q: %w", target, err)
		}
	}
	return &imapFolder{p: f.p, mailbox: target}, nil
}

func (f *imapFolder) Items(ctx context.Context) (core.ItemSource, error) {
	if f.mailbox == "" {
		return emptyItems{}, nil
	}
	count, err := f.p.ensureSelected(f.mailbox)
	if err != nil {
		return nil, err
	}
	return &imapItems{folder: f, count: count}, nil
}

type emptyItems struct{}

func (emptyItems) Count(ctx context.Context) (int, error) { return 0, nil }
func (emptyItems) ItemAt(ctx context.Context, pos int) (core.Item, error) {
	return nil, fmt.Errorf("no item at position %d", pos)
}

// imapItems reads items by sequence number from the selected mailbox.
type imapItems struct {
	folder *imapFolder
	count  int
}

func (s *imapItems) Count(ctx context.Context) (int, error) {
	return s.count, nil
}

func (s *imapItems) ItemAt(ctx context.Context, pos int) (core.Item, error) {
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOptions := &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}
	buffers, err := s.folder.p.client.Fetch(imap.SeqSetNum(uint32(pos)), fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch %d: %w", pos, err)
	}
	if len(buffers) == 0 {
		return nil, fmt.Errorf("no message at sequence %d", pos)
	}
	buf := buffers[0]
	return &imapItem{
		p:        s.folder.p,
		seq:      buf.SeqNum,
		envelope: buf.Envelope,
		raw:      buf.FindBodySection(bodySection),
	}, nil
}

// imapItem is one fetched message, addressed by its sequence number at fetch
// time. Mutations renumber later messages, which the descending traversal
// accounts for.
type imapItem struct {
	p        *IMAPProvider
	seq      uint32
	envelope *imap.Envelope
	raw      []byte
}

func (i *imapItem) IsMail() bool { return i.envelope != nil }

func (i *imapItem) Sender() (core.SenderHandle, error) {
	addr, err := i.fromAddress()
	if err != nil {
		return core.SenderHandle{}, err
	}
	// Addresses without a mailbox@host form are internal directory
	// handles (X.500-style entries carried over from an enterprise
	// store) and need resolution.
	if addr.Mailbox == "" || addr.Host == "" {
		handle := addr.Mailbox
		if handle == "" {
			handle = addr.Name
		}
		return core.SenderHandle{Handle: handle, Directory: true}, nil
	}
	return core.SenderHandle{Handle: addr.Mailbox + "@" + addr.Host}, nil
}

func (i *imapItem) SenderAddress() (string, error) {
	addr, err := i.fromAddress()
	if err != nil {
		return "", err
	}
	if addr.Mailbox != "" && addr.Host != "" {
		return addr.Mailbox + "@" + addr.Host, nil
	}
	return addr.Mailbox, nil
}

func (i *imapItem) fromAddress() (imap.Address, error) {
	if i.envelope == nil || len(i.envelope.From) == 0 {
		return imap.Address{}, fmt.Errorf("message %d has no sender", i.seq)
	}
	return i.envelope.From[0], nil
}

func (i *imapItem) Subject() (string, error) {
	if i.envelope == nil {
		return "", fmt.Errorf("message %d has no envelope", i.seq)
	}
	return i.envelope.Subject, nil
}

// Body extracts the inline text parts of the message.
func (i *imapItem) Body() (string, error) {
	if len(i.raw) == 0 {
		return "", nil
	}
	mr, err := mail.CreateReader(bytes.NewReader(i.raw))
	if err != nil {
		return "", fmt.Errorf("parse message %d: %w", i.seq, err)
	}

	var text strings.Builder
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read message %d part: %w", i.seq, err)
		}
		if _, ok := part.Header.(*mail.InlineHeader); ok {
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return "", fmt.Errorf("read message %d body: %w", i.seq, err)
			}
			text.Write(body)
			text.WriteByte('\n')
		}
	}
	return text.String(), nil
}

func (i *imapItem) Delete(ctx context.Context) error {
	seqSet := imap.SeqSetNum(i.seq)
	storeCmd := i.p.client.Store(seqSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagDeleted},
	}, nil)
	if _, err := storeCmd.Collect(); err != nil {
		return fmt.Errorf("imap store deleted %d: %w", i.seq, err)
	}
	if _, err := i.p.client.Expunge().Collect(); err != nil {
		return fmt.Errorf("imap expunge: %w", err)
	}
	return nil
}

func (i *imapItem) Move(ctx context.Context, dest core.Folder) error {
	target, ok := dest.(*imapFolder)
	if !ok {
		return fmt.Errorf("cannot move across store implementations")
	}
	if _, err := i.p.client.Move(imap.SeqSetNum(i.seq), target.mailbox).Wait(); err != nil {
		return fmt.Errorf("imap move %d to %q: %w", i.seq, target.mailbox, err)
	}
	return nil
}
