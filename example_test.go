package fatefinder_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
)

// ExampleNew drives a session with a stub fetcher instead of the remote API.
func ExampleNew() {
	stub := ports.FetcherFunc(func(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error) {
		return &domain.FortuneResult{
			Name:         "富山県",
			Capital:      "富山市",
			HasCoastLine: true,
			LogoURL:      "https://example.com/toyama.png",
			Brief:        "…",
		}, nil
	})

	sess, err := fatefinder.New(fatefinder.WithFetcher(stub))
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close()

	updates, cancel := sess.Subscribe()
	defer cancel()

	ctx := context.Background()
	if _, err := sess.StartInput(ctx); err != nil {
		log.Fatal(err)
	}
	if _, err := sess.Submit(ctx, domain.Form{
		Name:      "ゆめみん",
		Birthday:  domain.YearMonthDay{Year: 2000, Month: 1, Day: 27},
		BloodType: "A",
		Today:     domain.YearMonthDay{Year: 2023, Month: 5, Day: 5},
	}); err != nil {
		log.Fatal(err)
	}

	for snap := range updates {
		fmt.Println(snap.Screen)
		if snap.Screen == domain.ScreenResult {
			fmt.Println(snap.LastResult.Name)
			break
		}
	}
	// Output:
	// home
	// input
	// loading
	// result
	// 富山県
}
