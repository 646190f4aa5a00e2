/*
Package fatefinder finds the Japanese prefecture that best matches a person,
according to a remote fortune-telling API.

The core is a small navigation state machine. A Session walks five screens
(Home, Input, Loading, Result, Error) driven by the outcome of a single HTTP
call, and persists the most recent successful result. Rendering is left to a
presentation layer, which reads snapshots and invokes the session's actions.

# Usage

	sess, err := fatefinder.New(fatefinder.WithStore(store))
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close()

	updates, cancel := sess.Subscribe()
	defer cancel()

	_, _ = sess.StartInput(ctx)
	_, err = sess.Submit(ctx, domain.Form{
		Name:      "ゆめみん",
		Birthday:  domain.YearMonthDay{Year: 2000, Month: 1, Day: 27},
		BloodType: "A",
	})

	for snap := range updates {
		switch snap.Screen {
		case domain.ScreenResult:
			fmt.Println(snap.LastResult.Name)
		case domain.ScreenError:
			fmt.Println(snap.LastError)
		}
	}

Presentations shipped with the module live in internal/presentation/tui (terminal),
pkg/adapters/http (JSON and Server-Sent Events) and pkg/adapters/mcp (Model Context
Protocol tools).
*/
package fatefinder
