// @title           DocuQuery API
// @version         1.0
// @description     This API handles document uploads, asynchronous extraction jobs, and question answering over the extracted content.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package utils

//run redis
//docker run -p 6379:6379 -d redis

//run postgres with pgvector
//docker run -p 5432:5432 -e POSTGRES_PASSWORD=postgres -d pgvector/pgvector:pg17

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
