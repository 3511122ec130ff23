// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the HTU21D driver, its host glue in
// htu21d/devnode, and the packages they share.
package devices
