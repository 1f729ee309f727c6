// Package openapi derives form schemas from the request bodies of OpenAPI 3
// operations. Presentation metadata comes from the x-formgen extension:
//
//	properties:
//	  email:
//	    type: string
//	    format: email
//	    x-formgen:
//	      label: Work email
//	      order: 1
//	      helpText: We never share it.
package openapi
