package internal

import (
	"dashgate/internal/controllers"
	"dashgate/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/api/summary", http.HandlerFunc(apiController.Summary))
	routers.Post("/api/token-cost", http.HandlerFunc(apiController.TokenCost))
	routers.Get("/api/questions", http.HandlerFunc(apiController.Questions))
	routers.Get("/api/conversation/{id}", http.HandlerFunc(apiController.Conversation))
	routers.Get("/api/filter", http.HandlerFunc(apiController.GetFilter))
	routers.Put("/api/filter", http.HandlerFunc(apiController.PutFilter))
	routers.Delete("/api/tab", http.HandlerFunc(apiController.CloseTab))
	return routers
}
