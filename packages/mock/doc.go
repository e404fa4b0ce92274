// Package mock provides a mock HTTP server driven by YAML route files.
//
// A route file looks like:
//
//	routes:
//	  - name: get-user
//	    method: GET
//	    path: /users/{{id}}
//	    status: 200
//	    json:
//	      id: "{{id}}"
//	  - method: GET
//	    path: /slow
//	    delay: 2s
//	  - method: GET
//	    path: /broken
//	    drop: true
//
// Path parameters written as {{name}} are captured and substituted into the
// response body. A dropped route closes the connection without a response.
package mock
