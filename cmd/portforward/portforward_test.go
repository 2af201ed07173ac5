package portforward

import (
	"bytes"
	"errors"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/stackvista/esconfig/internal/k8s"
	"github.com/stackvista/esconfig/internal/logger"
)

// mockK8sClient returns canned port-forward channels
type mockK8sClient struct {
	err        error
	namespace  string
	service    string
	localPort  int
	remotePort int
}

func (m *mockK8sClient) Clientset() kubernetes.Interface {
	return fake.NewSimpleClientset()
}

func (m *mockK8sClient) PortForwardService(namespace, serviceName string, localPort, remotePort int) (chan struct{}, chan struct{}, error) {
	m.namespace, m.service, m.localPort, m.remotePort = namespace, serviceName, localPort, remotePort
	if m.err != nil {
		return nil, nil, m.err
	}
	ready := make(chan struct{})
	close(ready)
	return make(chan struct{}, 1), ready, nil
}

func TestSetupPortForward_ServiceNotFound(t *testing.T) {
	client := k8s.NewTestClient(fake.NewSimpleClientset())
	log := logger.New(true, false)

	_, err := SetupPortForward(client, "default", "nonexistent-service", 9200, 9200, log)
	if err == nil {
		t.Fatal("expected error for nonexistent service, got nil")
	}
}

func TestSetupPortForward_NoRunningPods(t *testing.T) {
	fakeClientset := fake.NewSimpleClientset(
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "elasticsearch-master",
				Namespace: "default",
			},
			Spec: corev1.ServiceSpec{
				Selector: map[string]string{
					"app": "elasticsearch-master",
				},
			},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "elasticsearch-master-0",
				Namespace: "default",
				Labels: map[string]string{
					"app": "elasticsearch-master",
				},
			},
			Status: corev1.PodStatus{
				Phase: corev1.PodPending,
			},
		},
	)
	client := k8s.NewTestClient(fakeClientset)
	log := logger.New(true, false)

	_, err := SetupPortForward(client, "default", "elasticsearch-master", 9200, 9200, log)
	if err == nil {
		t.Fatal("expected error for service with no running pods, got nil")
	}
}

func TestForService(t *testing.T) {
	mock := &mockK8sClient{}
	buf := &bytes.Buffer{}
	log := logger.NewWithWriter(buf, false, false)

	target, err := k8s.ParseServiceURL("k8s://observability/elasticsearch-master:9200?localPort=19200")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	conn, err := ForService(mock, target, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if mock.namespace != "observability" || mock.service != "elasticsearch-master" {
		t.Errorf("forwarded to %s/%s", mock.namespace, mock.service)
	}
	if mock.localPort != 19200 || mock.remotePort != 9200 {
		t.Errorf("expected ports 19200:9200, got %d:%d", mock.localPort, mock.remotePort)
	}
	if conn.LocalPort != 19200 {
		t.Errorf("expected LocalPort 19200, got %d", conn.LocalPort)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Port-forward established")) {
		t.Errorf("expected success message, got %q", buf.String())
	}
}

func TestForService_Error(t *testing.T) {
	mock := &mockK8sClient{err: errors.New("connection refused")}
	log := logger.New(true, false)

	_, err := ForService(mock, &k8s.ServiceTarget{Namespace: "ns", Service: "es", LocalPort: 9200, RemotePort: 9200}, log)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestConn_Close(t *testing.T) {
	conn := &Conn{
		StopChan:  make(chan struct{}),
		ReadyChan: make(chan struct{}),
		LocalPort: 9200,
	}

	conn.Close()
	conn.Close()

	select {
	case <-conn.StopChan:
		// Successfully received from closed channel
	default:
		t.Error("expected StopChan to be closed")
	}
}
