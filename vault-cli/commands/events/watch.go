package events

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
)

// Source delivers events until ctx is done. iac.KafkaSubscriber is one.
type Source interface {
	Subscribe(ctx context.Context, callback func(event iac.Event)) error
}

// Watch prints every event whose name is in names, or all events when names is empty.
func Watch(ctx context.Context, out io.Writer, source Source, names ...string) error {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	return source.Subscribe(ctx, func(event iac.Event) {
		if len(wanted) > 0 {
			if _, ok := wanted[event.Name]; !ok {
				return
			}
		}
		fmt.Fprintln(out, Format(event))
	})
}

// Format renders one event on a line with fields in key order.
func Format(event iac.Event) string {
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", time.Unix(int64(event.Timestamp), 0).UTC().Format(time.RFC3339), event.Emitter.Hex(), event.Name)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, event.Fields[k])
	}
	return b.String()
}
