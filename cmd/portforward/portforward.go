package portforward

import (
	"fmt"
	"sync"

	"github.com/stackvista/esconfig/internal/k8s"
	"github.com/stackvista/esconfig/internal/logger"
)

// Conn contains the channels needed to manage a port-forward connection
type Conn struct {
	StopChan  chan struct{}
	ReadyChan <-chan struct{}
	LocalPort int

	closeOnce sync.Once
}

// Close stops the port-forward. Calling it again is a no-op.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.StopChan)
	})
}

// SetupPortForward establishes a port-forward to a Kubernetes service and waits for it to be ready.
// It returns a Conn containing the stop and ready channels, plus the local port.
// The caller is responsible for calling Close when done.
func SetupPortForward(
	k8sClient k8s.Interface,
	namespace string,
	serviceName string,
	localPort int,
	remotePort int,
	log *logger.Logger,
) (*Conn, error) {
	log.Infof("Setting up port-forward to %s:%d in namespace %s...", serviceName, remotePort, namespace)

	stopChan, readyChan, err := k8sClient.PortForwardService(namespace, serviceName, localPort, remotePort)
	if err != nil {
		return nil, fmt.Errorf("failed to setup port-forward: %w", err)
	}

	// Wait for port-forward to be ready
	<-readyChan

	log.Successf("Port-forward established successfully")

	return &Conn{
		StopChan:  stopChan,
		ReadyChan: readyChan,
		LocalPort: localPort,
	}, nil
}

// ForService port-forwards to the service named by a k8s:// host
func ForService(k8sClient k8s.Interface, target *k8s.ServiceTarget, log *logger.Logger) (*Conn, error) {
	conn, err := SetupPortForward(k8sClient, target.Namespace, target.Service, target.LocalPort, target.RemotePort, log)
	if err != nil {
		return nil, err
	}
	log.Debugf("Forwarding %s to %s/%s:%d", target.LocalURL(), target.Namespace, target.Service, target.RemotePort)
	return conn, nil
}
