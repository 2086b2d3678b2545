// Command exporter publishes docker container metadata as a Prometheus
// gauge so dashboards can join pipeline metrics with compose service
// names. It runs as a sidecar next to the worker stack.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	listenAddr   = ":8000"
	scanInterval = 15 * time.Second
)

var containerMeta = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "container_meta_info",
		Help: "Container metadata info",
	},
	[]string{"id", "name", "image", "com_docker_compose_service", "state", "full_id"},
)

func init() {
	prometheus.MustRegister(containerMeta)
}

func collect() {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		log.Printf("docker client: %v", err)
		return
	}
	defer cli.Close()

	containers, err := cli.ContainerList(context.Background(), container.ListOptions{All: true})
	if err != nil {
		log.Printf("list containers: %v", err)
		return
	}

	// Reset drops containers that disappeared since the last scan.
	containerMeta.Reset()
	for _, c := range containers {
		containerMeta.WithLabelValues(
			shortID(c.ID),
			containerName(c.Names),
			c.Image,
			serviceLabel(c.Labels, c.Names),
			c.State,
			c.ID,
		).Set(1)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

// serviceLabel prefers the compose service label, falling back to the
// container name for plain docker runs.
func serviceLabel(labels map[string]string, names []string) string {
	if s := labels["com.docker.compose.service"]; s != "" {
		return s
	}
	return containerName(names)
}

func main() {
	go func() {
		for {
			collect()
			time.Sleep(scanInterval)
		}
	}()

	http.Handle("/metrics", promhttp.Handler())
	fmt.Println("Starting container meta exporter on " + listenAddr)
	log.Fatal(http.ListenAndServe(listenAddr, nil))
}
