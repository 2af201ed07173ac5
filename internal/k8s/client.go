// Package k8s provides the Kubernetes client used to reach clusters that
// are only exposed as a Service, by port-forwarding to one of its pods.
package k8s

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"
)

// Client wraps the Kubernetes clientset
type Client struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
	debug      bool
}

// Clientset returns the underlying Kubernetes clientset
func (c *Client) Clientset() kubernetes.Interface {
	return c.clientset
}

// NewClient creates a new Kubernetes client
func NewClient(kubeconfigPath string, debug bool) (*Client, error) {
	if kubeconfigPath == "" {
		// Use default kubeconfig location
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		kubeconfigPath = filepath.Join(home, ".kube", "config")
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{
		clientset:  clientset,
		restConfig: config,
		debug:      debug,
	}, nil
}

// NewTestClient wraps a clientset without a REST config, for tests that
// only exercise service and pod lookups.
func NewTestClient(clientset kubernetes.Interface) *Client {
	return &Client{
		clientset:  clientset,
		restConfig: &rest.Config{Host: "https://localhost:6443"},
	}
}

// PortForwardService forwards localPort to a pod behind the service.
// servicePort is the port the service exposes; it is mapped to the pod's
// target port the way kube-proxy would.
func (c *Client) PortForwardService(namespace, serviceName string, localPort, servicePort int) (chan struct{}, chan struct{}, error) {
	ctx := context.Background()

	svc, err := c.clientset.CoreV1().Services(namespace).Get(ctx, serviceName, metav1.GetOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get service: %w", err)
	}
	if len(svc.Spec.Selector) == 0 {
		return nil, nil, fmt.Errorf("service %s/%s has no pod selector", namespace, serviceName)
	}

	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: metav1.FormatLabelSelector(&metav1.LabelSelector{
			MatchLabels: svc.Spec.Selector,
		}),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list pods: %w", err)
	}
	if len(pods.Items) == 0 {
		return nil, nil, fmt.Errorf("no pods found for service %s", serviceName)
	}

	pod := selectPod(pods.Items)
	if pod == nil {
		return nil, nil, fmt.Errorf("no running pods found for service %s", serviceName)
	}

	podPort, err := targetPort(svc, pod, servicePort)
	if err != nil {
		return nil, nil, err
	}

	return c.forwardToPod(namespace, pod.Name, localPort, podPort)
}

// selectPod prefers a ready pod, then any running one. Elasticsearch nodes
// report running well before they accept requests.
func selectPod(pods []corev1.Pod) *corev1.Pod {
	var running *corev1.Pod
	for i := range pods {
		pod := &pods[i]
		if pod.Status.Phase != corev1.PodRunning || pod.DeletionTimestamp != nil {
			continue
		}
		if isReady(pod) {
			return pod
		}
		if running == nil {
			running = pod
		}
	}
	return running
}

func isReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

// targetPort maps a service port to the container port on pod. Ports the
// service does not declare are used as is.
func targetPort(svc *corev1.Service, pod *corev1.Pod, servicePort int) (int, error) {
	for _, sp := range svc.Spec.Ports {
		if int(sp.Port) != servicePort {
			continue
		}

		switch {
		case sp.TargetPort.Type == intstr.String:
			name := sp.TargetPort.StrVal
			for _, container := range pod.Spec.Containers {
				for _, cp := range container.Ports {
					if cp.Name == name {
						return int(cp.ContainerPort), nil
					}
				}
			}
			return 0, fmt.Errorf("pod %s has no container port named %q", pod.Name, name)
		case sp.TargetPort.IntVal != 0:
			return int(sp.TargetPort.IntVal), nil
		default:
			return servicePort, nil
		}
	}
	return servicePort, nil
}

func (c *Client) forwardToPod(namespace, podName string, localPort, podPort int) (chan struct{}, chan struct{}, error) {
	hostURL, err := url.Parse(c.restConfig.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse host: %w", err)
	}
	hostURL.Path = fmt.Sprintf("/api/v1/namespaces/%s/pods/%s/portforward", namespace, podName)

	transport, upgrader, err := spdy.RoundTripperFor(c.restConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create round tripper: %w", err)
	}
	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, hostURL)

	stopChan := make(chan struct{}, 1)
	readyChan := make(chan struct{})

	// client-go reports every forwarded connection; only show that with --debug
	out, errOut := io.Discard, io.Discard
	if c.debug {
		out, errOut = os.Stdout, os.Stderr
	}

	fw, err := portforward.NewOnAddresses(dialer, []string{"localhost"},
		[]string{fmt.Sprintf("%d:%d", localPort, podPort)}, stopChan, readyChan, out, errOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create port forwarder: %w", err)
	}

	go func() {
		if err := fw.ForwardPorts(); err != nil && c.debug {
			fmt.Fprintf(os.Stderr, "DEBUG: port-forward to %s/%s stopped: %v\n", namespace, podName, err)
		}
	}()

	return stopChan, readyChan, nil
}
