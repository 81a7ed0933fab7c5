// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/escrow/campaigns": {
            "get": {
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "List campaigns",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "Create a campaign with a five milestone release schedule",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/v1/escrow/campaigns/{campaign_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "Get a campaign",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/escrow/campaigns/{campaign_id}/contributions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "Contribute under a risk profile",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/v1/escrow/campaigns/{campaign_id}/milestones/{index}/evidence": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "Submit milestone evidence and open voting",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/escrow/campaigns/{campaign_id}/milestones/{index}/votes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "Cast a weighted vote",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/escrow/campaigns/{campaign_id}/milestones/{index}/resolve": {
            "post": {
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "Resolve a closed voting window",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/escrow/campaigns/{campaign_id}/refunds": {
            "post": {
                "produces": ["application/json"],
                "tags": ["escrow"],
                "summary": "Claim a refund from a failed or cancelled campaign",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/registry/founders/{founder_id}/campaigns": {
            "get": {
                "produces": ["application/json"],
                "tags": ["registry"],
                "summary": "List a founder's campaigns",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fundlock Escrow API",
	Description:      "Milestone-gated escrow for crowdfunding campaigns.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
