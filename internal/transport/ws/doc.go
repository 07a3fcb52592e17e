// Package ws carries the game protocol over gorilla/websocket.
//
// Every frame in either direction is a JSON envelope:
//
//	{"event": "mine_gold"}
//	{"event": "login", "data": "Alice"}
//	{"event": "update_stats", "data": {"id": "...", "level": 3, "money": 940}}
//
// Each accepted socket gets a fresh connection id. The Hub implements
// session.Emitter, so the dispatcher addresses sockets by that id without
// knowing anything about websockets.
package ws
