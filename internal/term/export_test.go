package term

var Pump = pump
