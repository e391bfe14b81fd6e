// Package definition loads sequences and templates from YAML.
//
// A definition lists templates and sequences, each with ordered steps.
// Every step names exactly one action:
//
//	templates:
//	  - name: greet
//	    parameters: [who]
//	    steps:
//	      - property: {name: greeting, value: "{concat('hello ', get-property('who'))}"}
//	sequences:
//	  - name: main
//	    steps:
//	      - invoke:
//	          target: greet
//	          arguments:
//	            - {name: who, value: "{get-property('From')}"}
//	      - sequence: publish
//	      - drop: true
//
// Values use the argument forms of message.ParseArgument: plain text is a
// literal, {expr} is evaluated when the step runs and {{expr}} is stored
// unevaluated. Expressions are checked while loading, so a syntax error
// fails the load instead of the first message. References between
// sequences are resolved per message and may point forward.
package definition
