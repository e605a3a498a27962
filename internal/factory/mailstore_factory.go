package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/adapters/mailstore"
	"github.com/mhoran/mailsweep/internal/config"
	"github.com/mhoran/mailsweep/internal/core"
)

// MailStoreFactory creates mail-store bindings based on configuration
type MailStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailStoreFactory creates a new mail-store factory
func NewMailStoreFactory(cfg *config.Config, logger *zap.Logger) *MailStoreFactory {
	return &MailStoreFactory{cfg: cfg, logger: logger}
}

// CreateMailStore creates a mail store based on the configuration. The imap
// binding dials and authenticates here, so a misconfigured connection fails
// before any run starts.
func (f *MailStoreFactory) CreateMailStore() (core.MailStore, error) {
	storeType := f.cfg.GetString("mailstore.type")
	switch storeType {
	case "imap":
		imapCfg := f.cfg.GetIMAP()
		return mailstore.DialIMAP(mailstore.IMAPOptions{
			Address:     imapCfg.Address,
			Username:    imapCfg.Username,
			Password:    imapCfg.Password,
			TLS:         imapCfg.TLS,
			StoreName:   imapCfg.StoreName,
			RootMailbox: imapCfg.RootMailbox,
		}, f.logger)
	case "memory":
		store := mailstore.NewMemoryStore(f.cfg.GetArchive().StoreName)
		return mailstore.NewMemoryProvider(store), nil
	default:
		return nil, fmt.Errorf("unsupported mailstore type: %s", storeType)
	}
}
