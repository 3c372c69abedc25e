// Package singleton is the process-wide entry point to the singleton
// registry.
//
// Most programs need one registry that lives as long as the process:
//
//	pool, err := singleton.Get(ctx, func(ctx context.Context) (*db.Pool, error) {
//	    return db.Open(ctx, "users_db")
//	})
//
// Get keys the instance by its type. GetKey takes an explicit key, for
// declared identities or tags:
//
//	cfg, err := singleton.GetKey(ctx, key.Declared[*AppConfig](), loadConfig)
//
// The default registry is created on first use. Call InitDefault before that
// to supply one built with options, for example from a config file:
//
//	settings, _ := config.FromFile("singleton.yaml")
//	opts, journal, _ := registry.OptionsFromSettings(settings)
//	defer journal.Close()
//	singleton.InitDefault(registry.New(opts...))
//
// Packages under this one hold the parts: key derives keys, registry holds
// entries, strategy offers eager, lazy and closure providers, errors adds
// retry policy, and observability, journal and config carry the ambient
// concerns.
package singleton
