package functions

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
)

// Adapter serves API Gateway proxy events through an ordinary http.Handler,
// so the lambda entrypoint shares the router of the HTTP server.
type Adapter struct {
	proxy *httpadapter.HandlerAdapter
}

func NewAdapter(h http.Handler) *Adapter {
	return &Adapter{proxy: httpadapter.New(h)}
}

// Handle is the lambda handler function.
func (a *Adapter) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := a.proxy.ProxyWithContext(ctx, ev)
	if err != nil {
		logger.Error("api gateway proxy: " + err.Error())
	}
	return resp, err
}
