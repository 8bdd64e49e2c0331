package handlers

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/techgyan/techgyan-backend/internal/viewer"
)

// graphQLRequest is one operation of a request body. ID is only
// meaningful inside a batch, where it ties responses back to requests.
type graphQLRequest struct {
	ID            interface{}            `json:"id,omitempty"`
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// graphQLResponse mirrors the request shape. Status is set for batch
// items only; single responses carry it on the HTTP envelope instead.
type graphQLResponse struct {
	ID     interface{} `json:"id,omitempty"`
	Status int         `json:"status,omitempty"`
	Data   interface{} `json:"data"`
	Errors interface{} `json:"errors,omitempty"`
}

type GraphQLHandler struct {
	schema graphql.Schema
}

func NewGraphQLHandler(schema graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{schema: schema}
}

// Post executes a single operation or a batch. A body starting with
// '[' is a batch; every item gets its own status in the response list
// and the HTTP envelope stays 200.
func (h *GraphQLHandler) Post(c *fiber.Ctx) error {
	body := bytes.TrimSpace(c.Body())
	ctx := viewer.NewContext(c.UserContext(), viewer.FromFiber(c))

	if len(body) > 0 && body[0] == '[' {
		var reqs []graphQLRequest
		if err := json.Unmarshal(body, &reqs); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed batch body")
		}
		responses := make([]graphQLResponse, len(reqs))
		for i, req := range reqs {
			resp := h.execute(ctx, req)
			resp.ID = req.ID
			resp.Status = fiber.StatusOK
			if resp.Data == nil && resp.Errors != nil {
				resp.Status = fiber.StatusBadRequest
			}
			responses[i] = resp
		}
		return c.JSON(responses)
	}

	var req graphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	resp := h.execute(ctx, req)
	if resp.Data == nil && resp.Errors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return c.JSON(resp)
}

// Get serves read-only operations; mutations over GET are rejected so
// side effects never ride on a cacheable verb.
func (h *GraphQLHandler) Get(c *fiber.Ctx) error {
	req := graphQLRequest{
		Query:         c.Query("query"),
		OperationName: c.Query("operationName"),
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed variables")
		}
	}
	if req.Query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter is required")
	}
	if op, err := operationType(req.Query, req.OperationName); err != nil || op != ast.OperationTypeQuery {
		return fiber.NewError(fiber.StatusBadRequest, "only query operations are allowed over GET")
	}

	ctx := viewer.NewContext(c.UserContext(), viewer.FromFiber(c))
	resp := h.execute(ctx, req)
	if resp.Data == nil && resp.Errors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *GraphQLHandler) execute(ctx context.Context, req graphQLRequest) graphQLResponse {
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	resp := graphQLResponse{Data: result.Data}
	if len(result.Errors) > 0 {
		resp.Errors = result.Errors
	}
	return resp
}

// operationType parses the document and reports the type of the
// operation that would run.
func operationType(query, operationName string) (string, error) {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(query)}),
	})
	if err != nil {
		return "", err
	}
	var picked *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" {
			if picked == nil {
				picked = op
			}
			continue
		}
		if op.Name != nil && op.Name.Value == operationName {
			picked = op
			break
		}
	}
	if picked == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "no matching operation")
	}
	return picked.Operation, nil
}
