package kv

// Options selects and configures the backend opened by Open.
type Options struct {
	// Path is the location of the persistent database file. When empty,
	// an in-memory store is used and nothing survives the process.
	Path string

	// DeviceSecret enables the encrypted-at-rest backend. When empty,
	// values are stored in plain form.
	DeviceSecret []byte
}

// Open builds the storage stack for a device: a sealed store over the
// persistent file when a device secret is available, the plain
// persistent store otherwise. Backend selection happens once, here;
// callers hold a Store and never branch on capability again.
func Open(opts Options) (Store, error) {
	var base Store
	if opts.Path == "" {
		base = NewMemory()
	} else {
		s, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
		base = s
	}

	if len(opts.DeviceSecret) == 0 {
		return base, nil
	}
	return NewSealed(base, opts.DeviceSecret)
}
