// @title           joe-share API
// @version         1.0
// @description     Connection graph and item sharing service. Authenticate with a Personal Access Token.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your API token. Example: "Bearer js_xxx"
package api
