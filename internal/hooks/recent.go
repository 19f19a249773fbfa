package hooks

import (
	"context"
	"path/filepath"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/settings"
)

// RecentType is the registry name of the recent hook.
const RecentType = "recent"

// RecentHook remembers install paths of past releases in a bounded
// most-recently-used list.
type RecentHook struct {
	Base
	store *settings.Store
}

// RecentFactory returns a factory for hooks recording into store.
func RecentFactory(store *settings.Store) Factory {
	return func(sourcePath string) (Hook, error) {
		return &RecentHook{
			Base:  Base{HookName: RecentType, SourcePath: sourcePath},
			store: store,
		}, nil
	}
}

func (h *RecentHook) PostRelease(_ context.Context, r Release) error {
	if r.InstallPath == "" {
		return nil
	}
	return h.store.PrependStringList(config.ListRecentPaths, filepath.Clean(r.InstallPath), config.KeyMaxRecent)
}

// Builtin returns a registry with the recent hook and a command hook type
// for every hook in hc.
func Builtin(store *settings.Store, hc config.HooksConfig, opts CommandOptions) *Registry {
	r := NewRegistry()
	r.Register(RecentType, RecentFactory(store))
	RegisterCommands(r, hc, opts)
	return r
}
