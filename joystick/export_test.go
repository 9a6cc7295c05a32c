package joystick

var Round4 = round4
