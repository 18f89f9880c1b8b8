package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"insights/internal/catalog/domain"
	"insights/internal/config"
)

const sampleCSV = "\ufeffproduct_id,product_name,category,discounted_price,actual_price,discount_percentage,rating,rating_count,about_product,user_id,user_name,review_id,review_title,review_content,img_link,product_link\n" +
	`B07JW9H4J1,USB Cable,Computers&Accessories|Accessories,"₹399","₹1,099",64%,4.2,"24,269",Fast,"u1,u2","Ann,Bob","r1,r2","Good,Ok","works,fine",http://img,http://p` + "\n" +
	`B098NS6PVG,Kettle,Home&Kitchen,1500,2500,40%,|,,,u3,Cid,r3,Meh,leaks,,` + "\n"

func TestReadCSV(t *testing.T) {
	products, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	p := products[0]
	if p.ID != "B07JW9H4J1" || p.ActualPrice.String() != "₹1,099" || p.Reviews.ReviewID != "r1,r2" {
		t.Errorf("unexpected first product %+v", p)
	}
	if !products[1].RatingCount.IsMissing() {
		t.Error("empty rating_count must be missing")
	}
	if products[1].Reviews.HelpfulCount != "" {
		t.Error("absent helpful_count column must stay empty")
	}
}

func TestReadCSV_MissingProductID(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("product_name,rating\nx,4\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

type failingWriter struct {
	mu    sync.Mutex
	calls int
}

func (w *failingWriter) InsertMany(ctx context.Context, products []domain.RawProduct) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	return fmt.Errorf("batch of %d refused", len(products))
}

// slowFirstWriter ralentit les premiers lots pour qu'un import concurrent les dépasse
type slowFirstWriter struct {
	*MemoryProductStore
	calls atomic.Int32
}

func (w *slowFirstWriter) InsertMany(ctx context.Context, products []domain.RawProduct) error {
	if n := w.calls.Add(1); n <= 2 {
		time.Sleep(time.Duration(3-n) * 10 * time.Millisecond)
	}
	return w.MemoryProductStore.InsertMany(ctx, products)
}

func TestImportBatches(t *testing.T) {
	products := make([]domain.RawProduct, 23)
	for i := range products {
		products[i] = domain.RawProduct{ID: domain.ProductID(fmt.Sprintf("p%02d", i))}
	}

	w := &slowFirstWriter{MemoryProductStore: NewMemoryProductStore()}
	if err := ImportBatches(context.Background(), w, products, 5); err != nil {
		t.Fatalf("ImportBatches: %v", err)
	}
	stored, _ := w.Find(context.Background(), Filter{})
	if !reflect.DeepEqual(ids(stored), ids(products)) {
		t.Errorf("insertion order = %v, want the file order", ids(stored))
	}
	if w.calls.Load() != 5 {
		t.Errorf("InsertMany calls = %d, want 5", w.calls.Load())
	}

	failing := &failingWriter{}
	err := ImportBatches(context.Background(), failing, products, 10)
	if err == nil || !strings.Contains(err.Error(), "insert rows 20-22") {
		t.Errorf("err = %v, want the failing batch range", err)
	}
	if failing.calls != 3 {
		t.Errorf("calls = %d, want 3", failing.calls)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, closeMem, err := OpenStore(ctx, config.StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("OpenStore(memory): %v", err)
	}
	defer closeMem()
	if _, ok := mem.(*MemoryProductStore); !ok {
		t.Errorf("memory backend returned %T", mem)
	}

	lite, closeLite, err := OpenStore(ctx, config.StoreConfig{Backend: "sqlite", SQLitePath: t.TempDir() + "/catalog.db"})
	if err != nil {
		t.Fatalf("OpenStore(sqlite): %v", err)
	}
	defer closeLite()
	if err := lite.InsertMany(ctx, fixtures()); err != nil {
		t.Fatalf("InsertMany: %v", err)
	}
	if n, _ := lite.Count(ctx, Filter{}); n != len(fixtures()) {
		t.Errorf("Count = %d, want %d", n, len(fixtures()))
	}

	if _, _, err := OpenStore(ctx, config.StoreConfig{Backend: "redis"}); !errors.Is(err, config.ErrInvalidStoreBackend) {
		t.Errorf("err = %v, want ErrInvalidStoreBackend", err)
	}
}
