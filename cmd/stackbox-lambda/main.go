// Command stackbox-lambda hosts the same dispatcher as cmd/stackbox, but
// behind API Gateway instead of a bound TCP listener: useful for running the
// emulator itself as a Lambda function during integration tests of other
// Lambda-based systems.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"

	"stackbox/internal/bootstrap"
	"stackbox/internal/config"
)

var chiLambda *chiadapter.ChiLambdaV2

func init() {
	cfg := config.Defaults()

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}

	router := bootstrap.BuildRouter(cfg, logger)
	handler := router.Setup()

	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("dispatcher handler is not a *chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)
}

// Handler adapts an API Gateway HTTP API v2 request into the chi dispatcher.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
