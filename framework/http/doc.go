// Package http provides small request and response helpers for the
// inspection endpoints.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//	key := req.Query("type")
//	ancestors, err := req.QueryBool("ancestors", false)
//	name := req.RouteParam("name")
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Success(entries)                  // 200 {"data": entries}
//	res.NotFound("no entry [repository]") // 404 {"message": "..."}
//	res.BadRequest()                      // 400 {"message": "Bad Request."}
package http
