package config

// IMAPConfig represents the configuration for the IMAP mail-store binding
type IMAPConfig struct {
	Address     string
	Username    string
	Password    string
	TLS         bool
	StoreName   string
	RootMailbox string
}

// ArchiveConfig represents the run-level archive settings
type ArchiveConfig struct {
	StoreName         string
	DeleteDestination string
}

// CacheConfig represents the address-cache persistence settings
type CacheConfig struct {
	Type         string
	CSVPath      string
	SQLitePath   string
	MySQLDSN     string
	SaveInterval int
}

// AuditConfig represents the audit sink locations
type AuditConfig struct {
	BulkPath    string
	InvalidPath string
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Address:     c.GetString("imap.address"),
		Username:    c.GetString("imap.username"),
		Password:    c.GetString("imap.password"),
		TLS:         c.GetBool("imap.tls"),
		StoreName:   c.GetString("imap.store_name"),
		RootMailbox: c.GetString("imap.root_mailbox"),
	}
}

// GetArchive returns the archive configuration
func (c *Config) GetArchive() ArchiveConfig {
	return ArchiveConfig{
		StoreName:         c.GetString("archive.store_name"),
		DeleteDestination: c.GetString("archive.delete_destination"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:         c.GetString("cache.type"),
		CSVPath:      c.GetString("cache.csv_path"),
		SQLitePath:   c.GetString("cache.sqlite_path"),
		MySQLDSN:     c.GetString("cache.mysql_dsn"),
		SaveInterval: c.GetInt("cache.save_interval"),
	}
}

// GetAudit returns the audit sink configuration
func (c *Config) GetAudit() AuditConfig {
	return AuditConfig{
		BulkPath:    c.GetString("audit.bulk_path"),
		InvalidPath: c.GetString("audit.invalid_path"),
	}
}
