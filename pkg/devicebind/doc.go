// Package devicebind is the device-bound session authority: it decides, on
// every authenticated request and on the explicit verify-login call, whether
// a (user, device) pair may proceed, must be approved first, or must be
// rejected.
//
// # Components
//
//   - SessionCache: process-local projection of active bindings, rebuilt
//     lazily from the login history store with single-flight warm-up
//   - the decision table (evaluate): Allow / Deny / RequireApproval
//   - Service: applies the table and the side effects of migrations,
//     serializing migrations per user
//   - Gate: chi middleware enforcing the policy on ambient requests
//   - api.AuthHandler: the verify-login endpoint, the only place a device
//     change can be approved
//
// # Invariants
//
// At most one device is actively bound per user, and a device belongs to at
// most one user at a time. A device claimed by another user is denied
// unconditionally, and the approved flag cannot override it. The cache is
// advisory: on disagreement the store wins and the cache is corrected.
//
// # Basic Usage
//
//	store := loginhistory.NewPostgresRepository(pool)
//	bindings := devicebind.NewService(store)
//	gate := devicebind.NewGate(verifier, users, bindings)
//
//	r.Group(func(r chi.Router) {
//		r.Use(gate.Middleware)
//		// protected routes; client.GetAuthUser(r) yields the identity
//	})
//
//	authHandler := api.NewAuthHandler(verifier, bindings)
//	r.Route("/auth", authHandler.Routes)
//
// # Related Packages
//
//   - pkg/loginhistory - the durable store this authority reconciles with
//   - pkg/client - the resolved identity placed on the request context
package devicebind
