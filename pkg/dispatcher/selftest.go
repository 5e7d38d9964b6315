package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
)

// TestPrefix is where the test action writes its scratch object
const TestPrefix = "go-files"

// TestData reports each step of the test action
type TestData struct {
	Upload      *objectstore.PutData    `json:"upload"`
	Read        *objectstore.GetData    `json:"read"`
	Update      *objectstore.PutData    `json:"update"`
	List        *objectstore.ListData   `json:"list"`
	Delete      *objectstore.DeleteData `json:"delete"`
	TestsPassed int                     `json:"testsPassed"`
}

// runTest uploads, reads, updates, lists and deletes a scratch object,
// counting the steps that succeed. Later steps run even if earlier ones fail.
func (d *Dispatcher) runTest(ctx context.Context) TestData {

	now := d.now()
	key := fmt.Sprintf("%v/test-%d.txt", TestPrefix, now.UnixMilli())
	var td TestData

	d.log.Info().Str("key", key).Msg("testing upload")
	up := d.store.Put(ctx, key,
		fmt.Sprintf("Hello from Go Lambda!\nTest created at: %v", now.Format(time.RFC3339)),
		map[string]string{"upload-time": now.Format(time.RFC3339), "language": "go"},
	)
	td.Upload = up.Data
	if up.Success {
		td.TestsPassed++
	}

	d.log.Info().Str("key", key).Msg("testing read")
	rd := d.store.Get(ctx, key)
	td.Read = rd.Data
	if rd.Success {
		td.TestsPassed++
	}

	original := ""
	if rd.Data != nil {
		original = rd.Data.Content
	}

	d.log.Info().Str("key", key).Msg("testing update")
	upd := d.store.Update(ctx, key,
		fmt.Sprintf("Updated content from Go!\nOriginal: %v", original),
		map[string]string{"updated-at": d.now().Format(time.RFC3339)},
	)
	td.Update = upd.Data
	if upd.Success {
		td.TestsPassed++
	}

	d.log.Info().Str("prefix", TestPrefix).Msg("testing list")
	ls := d.store.List(ctx, TestPrefix)
	td.List = ls.Data
	if ls.Success {
		td.TestsPassed++
	}

	d.log.Info().Str("key", key).Msg("testing delete")
	del := d.store.Delete(ctx, key)
	td.Delete = del.Data
	if del.Success {
		td.TestsPassed++
	}

	d.log.Info().Int("passed", td.TestsPassed).Msg("test run complete")
	return td
}
