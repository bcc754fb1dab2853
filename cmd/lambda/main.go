package main

import (
	"context"
	"log"
	"os"

	"levsim/api"
	"levsim/cmd"
	"levsim/internal/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

type lambdaHandler struct {
	apiHandler *api.ApiHandler
}

func (m lambdaHandler) Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ginLambda := ginadapter.New(m.apiHandler.Router())
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	cfg, err := util.LoadConfig(os.Getenv("LEVSIM_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	apiHandler, err := cmd.InitializeDependencies(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	handler := lambdaHandler{apiHandler: apiHandler}
	lambda.Start(handler.Handler)
}
