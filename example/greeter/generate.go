package greeter

//go:generate go run github.com/xdrpp/wlgen/cmd/wlgen -p greeter -o . generate greeter.xml
