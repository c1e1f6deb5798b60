// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP route table.

Routes use Go 1.22+ method/pattern routing on the standard ServeMux. Host
operations live under /events/{id} and require X-Host-Key; participant
operations live under /join/{code} and are addressed by the public join
code assigned at publish time.

	mux := router.NewRouter(db, cfg, eng)
	http.ListenAndServe(addr, middleware.CORS(mux))
*/
package router
