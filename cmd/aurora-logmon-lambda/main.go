package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/diillson/aurora-logmon/internal/adapter/driven/config"
	handler "github.com/diillson/aurora-logmon/internal/adapter/driving/lambda"
)

func main() {
	h := handler.New(config.NewConfigRepository())
	lambda.Start(h.Handle)
}
