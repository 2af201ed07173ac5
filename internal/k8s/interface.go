package k8s

import "k8s.io/client-go/kubernetes"

// Interface is the part of Client the port-forward setup needs, so it can be
// replaced with a mock in tests
type Interface interface {
	Clientset() kubernetes.Interface

	// PortForwardService forwards localPort to servicePort of a pod behind the
	// service. Closing stopChan ends the forward; readyChan closes once it
	// accepts connections.
	PortForwardService(namespace, serviceName string, localPort, servicePort int) (stopChan chan struct{}, readyChan chan struct{}, err error)
}

var _ Interface = (*Client)(nil)
