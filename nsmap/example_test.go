package nsmap_test

import (
	"fmt"

	"github.com/CognitoIQ/go-clarity/nsmap"
)

func ExampleResolve() {
	name, err := nsmap.Resolve("smp:samplecreation")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(name.Space, name.Local)

	_, err = nsmap.Resolve("samplecreation")
	fmt.Println(err)

	// Output:
	// http://genologics.com/ri/sample samplecreation
	// nsmap: no namespace prefix in tag "samplecreation"
}
