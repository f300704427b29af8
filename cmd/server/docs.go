// Package main FamVault Server API
//
//	@title						FamVault Server API
//	@version					1.0
//	@description				Family health record backend with AI assistant routing and cost accounting
//
//	@contact.name				FamVault Support
//	@contact.email				support@famvault.io
//
//	@license.name				Proprietary
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					AI
//	@tag.description			Chat routing and usage statistics
//
//	@tag.name					Records
//	@tag.description			Health records and documents
//
//	@tag.name					Family
//	@tag.description			Family membership and invitations
//
//	@tag.name					User
//	@tag.description			Profile and consent settings
//
//	@tag.name					Notifications
//	@tag.description			In-app notifications
//
//	@tag.name					Admin
//	@tag.description			Operator endpoints
package main
