package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/retry"

	"github.com/dreamware/portal/internal/monster"
)

// Monster resources live in the kaschaefer.com/v1 API group.
const (
	group    = "kaschaefer.com"
	version  = "v1"
	kind     = "Monster"
	resource = "monsters"
)

var gvr = schema.GroupVersionResource{Group: group, Version: version, Resource: resource}

// ErrAlreadyExists is returned by Create when a resource with that name is
// already present. Retried batches can produce duplicate creates, so the
// reconciler treats this as a warning rather than a failure.
var ErrAlreadyExists = errors.New("monster resource already exists")

// Client mirrors monster records into cluster custom resources, one
// resource per monster, keyed by the record's resource name within a
// namespace.
type Client struct {
	dyn dynamic.Interface

	// backoff bounds the optimistic-concurrency retry in Update:
	// Steps attempts with Duration between them.
	backoff wait.Backoff
}

// New builds a Client from the in-cluster service account, falling back to
// the local kubeconfig for development outside the cluster.
func New() (*Client, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("load cluster config: %w", err)
		}
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build dynamic client: %w", err)
	}
	return NewWithInterface(dyn), nil
}

// NewWithInterface wraps an existing dynamic client; used by tests.
func NewWithInterface(dyn dynamic.Interface) *Client {
	return &Client{
		dyn: dyn,
		backoff: wait.Backoff{
			Steps:    3,
			Duration: time.Second,
			Factor:   1.0,
		},
	}
}

// Exists probes for the named resource. Failures other than "not found"
// propagate as transport errors.
func (c *Client) Exists(ctx context.Context, namespace, name string) (bool, error) {
	_, err := c.dyn.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get monster %s: %w", name, err)
	}
	return true, nil
}

// Create writes a new resource for the record. Creating a name that
// already exists returns ErrAlreadyExists.
func (c *Client) Create(ctx context.Context, namespace string, rec monster.Record) error {
	name := rec.ResourceName()
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": group + "/" + version,
		"kind":       kind,
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
		},
		"spec": specFromRecord(rec),
	}}

	_, err := c.dyn.Resource(gvr).Namespace(namespace).Create(ctx, obj, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		log.Printf("orchestrator: monster %s already exists in %s", name, namespace)
		return fmt.Errorf("create monster %s: %w", name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create monster %s: %w", name, err)
	}
	log.Printf("orchestrator: created monster %s in %s", name, namespace)
	return nil
}

// Update fetches the current resource, merges the record's field values
// into its spec, and writes it back. Conflicting remote writes are retried
// up to the backoff bound; after that the conflict surfaces to the caller.
// Updating a resource that doesn't exist is a no-op warning, never a
// create.
func (c *Client) Update(ctx context.Context, namespace string, rec monster.Record) error {
	name := rec.ResourceName()
	iface := c.dyn.Resource(gvr).Namespace(namespace)

	err := retry.OnError(c.backoff, apierrors.IsConflict, func() error {
		cur, err := iface.Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			log.Printf("orchestrator: monster %s does not exist in %s, skipping update", name, namespace)
			return nil
		}
		if err != nil {
			return err
		}

		spec, _, err := unstructured.NestedMap(cur.Object, "spec")
		if err != nil || spec == nil {
			spec = map[string]any{}
		}
		for k, v := range specFromRecord(rec) {
			spec[k] = v
		}
		cur.Object["spec"] = spec

		_, err = iface.Update(ctx, cur, metav1.UpdateOptions{})
		if apierrors.IsConflict(err) {
			log.Printf("orchestrator: conflict updating monster %s, retrying", name)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("update monster %s: %w", name, err)
	}
	return nil
}

// Delete removes the named resource. Deleting a resource that doesn't
// exist is a no-op warning.
func (c *Client) Delete(ctx context.Context, namespace, name string) error {
	err := c.dyn.Resource(gvr).Namespace(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if apierrors.IsNotFound(err) {
		log.Printf("orchestrator: monster %s does not exist in %s, skipping delete", name, namespace)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete monster %s: %w", name, err)
	}
	log.Printf("orchestrator: deleted monster %s from %s", name, namespace)
	return nil
}

// List returns the records mirrored into the namespace.
func (c *Client) List(ctx context.Context, namespace string) ([]monster.Record, error) {
	list, err := c.dyn.Resource(gvr).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list monsters: %w", err)
	}

	records := make([]monster.Record, 0, len(list.Items))
	for _, item := range list.Items {
		spec, _, err := unstructured.NestedMap(item.Object, "spec")
		if err != nil || spec == nil {
			continue
		}
		records = append(records, recordFromSpec(spec))
	}
	return records, nil
}

// DeleteAll removes every monster resource in the namespace. A failure on
// one resource doesn't stop the rest; the last error encountered is
// returned so partial cleanup is visible to the caller.
func (c *Client) DeleteAll(ctx context.Context, namespace string) error {
	list, err := c.dyn.Resource(gvr).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("list monsters for deletion: %w", err)
	}

	var lastErr error
	for _, item := range list.Items {
		if err := c.Delete(ctx, namespace, item.GetName()); err != nil {
			log.Printf("orchestrator: failed to delete monster %s: %v", item.GetName(), err)
			lastErr = err
		}
	}
	return lastErr
}
