// Package extension mounts Huddle into a host application.
//
// The extension:
//   - Builds the Repository from the configured backends
//   - Runs backend migrations on Init
//   - Mounts the event API under a configurable prefix, either on a Forge
//     router with OpenAPI metadata or as a plain http.Handler
//   - Runs the cache warmer between Start and Stop
//   - Provides a health check via Repository.Ping
//
// Usage:
//
//	ext := extension.New(
//	    extension.WithLocal(sqliteStore),
//	    extension.WithRemote(pgStore),
//	    extension.WithPrefix("/huddle"),
//	)
//	if err := ext.Init(ctx); err != nil {
//	    return err
//	}
//	ext.RegisterRoutes(app.Router(), app.Logger())
package extension
