package proxygen

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("dashboard", func() {
	It("queues a log payload without blocking when nobody is listening", func() {
		d := newDashboard(newStats())
		d.broadcastLog("warn", "relay 1.2.3.4:80 dropped")

		msg := <-d.broadcast
		var payload Payload
		Expect(json.Unmarshal(msg, &payload)).To(Succeed())
		Expect(payload.Kind).To(Equal("log"))
	})

	It("drops the payload instead of blocking once the buffer is full", func() {
		d := newDashboard(newStats())
		d.broadcast = make(chan []byte) // unbuffered, nobody reading
		Expect(func() { d.broadcastLog("error", "x") }).NotTo(Panic())
	})
})
