package main

import (
	"context"
	"time"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/app"
)

func main() {
	application := app.New()

	// Block until a termination signal arrives, then give shutdown ten
	// seconds to drain in-flight requests and close resources.
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx)
}
