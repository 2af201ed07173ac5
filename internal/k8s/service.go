package k8s

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// ServiceScheme marks a host reached over plain HTTP through a port-forward
	ServiceScheme = "k8s"
	// ServiceSchemeTLS marks a host reached over HTTPS through a port-forward
	ServiceSchemeTLS = "k8s+https"
)

// ServiceTarget is a cluster host of the form
// k8s://<namespace>/<service>:<port>[?localPort=<port>]
type ServiceTarget struct {
	Namespace  string
	Service    string
	RemotePort int
	LocalPort  int
	TLS        bool
}

// IsServiceURL reports whether host names a Kubernetes service
func IsServiceURL(host string) bool {
	lower := strings.ToLower(host)
	return strings.HasPrefix(lower, ServiceScheme+"://") || strings.HasPrefix(lower, ServiceSchemeTLS+"://")
}

// ParseServiceURL parses a k8s:// or k8s+https:// host. The local port
// defaults to the remote port.
func ParseServiceURL(host string) (*ServiceTarget, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service URL: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != ServiceScheme && scheme != ServiceSchemeTLS {
		return nil, fmt.Errorf("unsupported scheme %q in %s", u.Scheme, host)
	}

	namespace := u.Hostname()
	service := strings.Trim(u.Path, "/")
	if namespace == "" || service == "" || strings.Contains(service, "/") {
		return nil, fmt.Errorf("service URL %s must look like %s://<namespace>/<service>:<port>", host, ServiceScheme)
	}

	// the port belongs to the service, not the namespace: k8s://ns/svc:9200
	name, portStr, found := strings.Cut(service, ":")
	if !found {
		return nil, fmt.Errorf("service URL %s has no port", host)
	}
	remotePort, err := parsePort(portStr)
	if err != nil {
		return nil, fmt.Errorf("service URL %s: %w", host, err)
	}

	localPort := remotePort
	if lp := u.Query().Get("localPort"); lp != "" {
		localPort, err = parsePort(lp)
		if err != nil {
			return nil, fmt.Errorf("service URL %s: local %w", host, err)
		}
	}

	return &ServiceTarget{
		Namespace:  namespace,
		Service:    name,
		RemotePort: remotePort,
		LocalPort:  localPort,
		TLS:        scheme == ServiceSchemeTLS,
	}, nil
}

// LocalURL is the base URL of the cluster once the port-forward is up
func (s *ServiceTarget) LocalURL() string {
	scheme := "http"
	if s.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://localhost:%d", scheme, s.LocalPort)
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %q is not between 1 and 65535", s)
	}
	return port, nil
}
