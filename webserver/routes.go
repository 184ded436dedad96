package webserver

func (web *WebServer) routes() {
	web.router.HandleFunc("/api/v1.0/graph", web.graphHdlr).Methods("GET")
	web.router.HandleFunc("/api/v1.0/graph/nodes", web.addNodeHdlr).Methods("POST")
	web.router.HandleFunc("/api/v1.0/graph/nodes/{index:[0-9]+}", web.replaceNodeHdlr).Methods("PUT")
	web.router.HandleFunc("/api/v1.0/graph/nodes/{index:[0-9]+}", web.removeNodeHdlr).Methods("DELETE")
	web.router.HandleFunc("/api/v1.0/graph/edges", web.addEdgeHdlr).Methods("POST")
	web.router.HandleFunc("/api/v1.0/graph/master", web.masterHdlr).Methods("PUT")
	web.router.HandleFunc("/api/v1.0/graph/master", web.clearMasterHdlr).Methods("DELETE")
	web.router.HandleFunc("/api/v1.0/engine/state", web.engineStateHdlr).Methods("PUT")
	web.router.HandleFunc("/ws", web.webSocketHdlr)
}
