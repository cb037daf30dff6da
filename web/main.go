package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/integrator"
	"github.com/df07/go-path-integrator/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()
	defer glog.Flush()

	if err := integrator.RegisterViews(); err != nil {
		glog.Exitf("Failed to register stats views: %v", err)
	}

	webServer := server.NewServer(*port)
	glog.Infof("Path integrator preview server, visit http://localhost:%d", *port)
	if err := webServer.Start(); err != nil {
		glog.Exitf("Server stopped: %v", err)
	}
}
